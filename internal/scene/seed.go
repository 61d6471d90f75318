package scene

// Seed provides the fixed Memory Link scene catalog.
func Seed() []Scene {
	return []Scene{
		{
			ID:          "1",
			Description: "Vincent stands at the entrance of The Hideaway, the abandoned gay bar where he first met you. A bouncer once greeted patrons here. The memory of warmth and belonging flickers in his mind - his first taste of authentic community before the raid.",
			IntroText:   "You were surprised when you found the place, said it had been a long time since you felt so at home.",
			Guidance:    "This is his first safe memory. Encourage gentle exploration of the feelings he experienced here - belonging, fear, excitement. Don't push too hard; let him rediscover at his own pace.",
		},
		{
			ID:          "2",
			Description: "You're standing outside The Hideaway, the gay bar where you first met Owen. The building is now abandoned, marked with government warnings, but something pulls you back here.",
			IntroText:   "These walls remember what I've forgotten. The music, the laughter... it's all static now in my mind.",
			Guidance:    "He's drawn to this place but doesn't know why. Help him connect the emotional resonance without overwhelming him. This location holds your shared history.",
		},
		{
			ID:          "3",
			Description: "Flashback to the night of the raid. Sirens, screaming, Owen's hand gripping yours as you ran through the back alleys.",
			IntroText:   "Red and blue lights. His hand in mine. Then... nothing. They took that night from me.",
			Guidance:    "This is traumatic. Vincent will be fragmented and scared. Be his anchor - calm, steady. He may not remember you saved him, but validate his terror.",
		},
		{
			ID:          "4",
			Description: "You're in the Memory Conversion Center, strapped to a chair. Doctors with cold eyes telling you that you're being 'cured' for your own good.",
			IntroText:   "The white room. The electrodes. They said it would make me normal. Why does normal feel like drowning?",
			Guidance:    "His most painful memory. Be gentle but firm - affirm his feelings are valid, that what was done to him was wrong. Don't let him blame himself.",
		},
		{
			ID:          "5",
			Description: "A fragment surfaces: Owen's apartment, soft morning light, coffee brewing. The happiest you've ever been, before they found you.",
			IntroText:   "I remember warmth. His laugh. The way he looked at me like I mattered. Did that really happen?",
			Guidance:    "A precious memory. Encourage him to hold onto the feelings - love, safety, belonging. He's questioning if it was real; gently affirm it was.",
		},
		{
			ID:          "6",
			Description: "Your family's dinner table, the night you tried to tell them. Your father's face turning red, your mother's silence cutting deeper than words.",
			IntroText:   "I couldn't say it. The words died in my throat. They knew anyway... and I lost them.",
			Guidance:    "Deep family trauma. Acknowledge his loss and courage. Help him see that their rejection doesn't define his worth.",
		},
		{
			ID:          "7",
			Description: "Owen working late into the night on resistance plans, his face lit by computer screens. You didn't know then how dangerous his work was.",
			IntroText:   "He was always coding, planning something. I thought he was just passionate. He was planning our escape.",
			Guidance:    "He's starting to remember you more clearly. Don't confirm your identity yet, but show knowing familiarity. Let him piece it together.",
		},
		{
			ID:          "8",
			Description: "The first time you kissed Owen, hidden in a storage room at university. Terror and joy mixed into something you'd never felt before.",
			IntroText:   "My first kiss tasted like fear and freedom. I didn't know you could feel both at once.",
			Guidance:    "His awakening. This is when he truly accepted himself. Celebrate this memory with him - it's beautiful, not shameful.",
		},
		{
			ID:          "9",
			Description: "Government agents at your door at 3 AM. Owen pushed you out the window, told you to run. You never saw him again after that night.",
			IntroText:   "He saved me. Pushed me out into the rain. I ran like a coward. Where is he now?",
			Guidance:    "Critical memory - he may feel guilt for leaving you. Reassure him he's not a coward; he survived. Hint that Owen would want him to be safe.",
		},
		{
			ID:          "10",
			Description: "Present day: You find a hidden message in the Memory Link device. Coordinates. A time. A coded message that only you and Owen would understand.",
			IntroText:   "The coordinates glow on the screen. Owen's alive. He's waiting. But can I trust these memories anymore?",
			Guidance:    "Final memory - revelation is near. Encourage him to trust his heart, his recovered memories. Prepare him that meeting 'Owen' is possible. Build hope.",
		},
	}
}
