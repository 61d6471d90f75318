package persona

import (
	"strings"
	"testing"

	"github.com/HPW17/AI-Conversational-Chatbot/internal/scene"
)

func TestInstructionWithoutSceneIsBase(t *testing.T) {
	if got := Instruction(BaseInstruction, nil); got != BaseInstruction {
		t.Fatalf("Instruction(nil) changed the base prompt")
	}
}

func TestInstructionAppendsSceneBlocksInOrder(t *testing.T) {
	s := scene.Scene{ID: "3", Description: "the raid", Guidance: "be his anchor"}
	got := Instruction("BASE", &s)
	want := "BASE\n\nCURRENT MEMORY CONTEXT (Memory 3):\nthe raid" +
		"\n\nYOUR GUIDANCE FOR THIS MEMORY:\nbe his anchor" +
		"\n\n" + stayInCharacter
	if got != want {
		t.Fatalf("Instruction() = %q, want %q", got, want)
	}
}

func TestInstructionSkipsEmptyGuidance(t *testing.T) {
	s := scene.Scene{ID: "7", Description: "late nights"}
	got := Instruction("BASE", &s)
	if strings.Contains(got, "YOUR GUIDANCE") {
		t.Fatalf("Instruction() included guidance block for empty guidance: %q", got)
	}
	if !strings.HasSuffix(got, stayInCharacter) {
		t.Fatalf("Instruction() missing closing directive: %q", got)
	}
}
