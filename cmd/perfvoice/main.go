package main

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/HPW17/AI-Conversational-Chatbot/internal/audio"
	"github.com/HPW17/AI-Conversational-Chatbot/internal/protocol"
	"github.com/HPW17/AI-Conversational-Chatbot/internal/voice"
)

type options struct {
	baseURL        string
	wavPath        string
	memoryID       string
	turns          int
	chunkMS        int
	realtime       float64
	startDelay     time.Duration
	interTurnDelay time.Duration
	turnTimeout    time.Duration
	verbose        bool
}

type wsEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type wsData struct {
	Message  string `json:"message"`
	Text     string `json:"text"`
	AudioURL string `json:"audio_url"`
}

type audioClip struct {
	WAV        []byte
	SampleRate int
}

// turnTiming holds offsets measured from the moment stop_stream was sent.
type turnTiming struct {
	Transcript time.Duration
	Text       time.Duration
	Audio      time.Duration
	Done       time.Duration
	AudioURL   string
}

func main() {
	cfg, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "perfvoice: %v\n", err)
		os.Exit(2)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "perfvoice: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var cfg options
	var startDelayMS int
	var interTurnMS int
	var turnTimeoutMS int

	flag.StringVar(&cfg.baseURL, "base-url", "http://127.0.0.1:8080", "relay base URL")
	flag.StringVar(&cfg.wavPath, "wav", "", "PCM16 WAV recording to replay (defaults to a generated tone)")
	flag.StringVar(&cfg.memoryID, "memory-id", "", "optional memory scene to load before the first turn")
	flag.IntVar(&cfg.turns, "turns", 5, "number of turns to replay")
	flag.IntVar(&cfg.chunkMS, "chunk-ms", 100, "audio fragment size in milliseconds")
	flag.Float64Var(&cfg.realtime, "realtime", 3.0, "fragment pacing multiplier (1.0=realtime, 2.0=2x)")
	flag.IntVar(&startDelayMS, "start-delay-ms", 300, "delay before first turn in milliseconds")
	flag.IntVar(&interTurnMS, "inter-turn-ms", 250, "delay between turns in milliseconds")
	flag.IntVar(&turnTimeoutMS, "turn-timeout-ms", 60000, "timeout waiting for a turn to finish in milliseconds")
	flag.BoolVar(&cfg.verbose, "verbose", true, "print replay progress")
	flag.Parse()

	cfg.baseURL = strings.TrimRight(strings.TrimSpace(cfg.baseURL), "/")
	if cfg.baseURL == "" {
		return options{}, fmt.Errorf("base-url is required")
	}
	if cfg.turns <= 0 {
		return options{}, fmt.Errorf("turns must be > 0")
	}
	if cfg.chunkMS < 10 || cfg.chunkMS > 2000 {
		return options{}, fmt.Errorf("chunk-ms must be in [10,2000]")
	}
	if cfg.realtime <= 0 {
		return options{}, fmt.Errorf("realtime must be > 0")
	}
	if startDelayMS < 0 {
		startDelayMS = 0
	}
	if interTurnMS < 0 {
		interTurnMS = 0
	}
	if turnTimeoutMS < 1000 {
		turnTimeoutMS = 1000
	}
	cfg.startDelay = time.Duration(startDelayMS) * time.Millisecond
	cfg.interTurnDelay = time.Duration(interTurnMS) * time.Millisecond
	cfg.turnTimeout = time.Duration(turnTimeoutMS) * time.Millisecond
	cfg.memoryID = strings.TrimSpace(cfg.memoryID)
	return cfg, nil
}

func run(cfg options) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	clip, err := loadClip(cfg.wavPath)
	if err != nil {
		return fmt.Errorf("prepare recording: %w", err)
	}

	wsURL, err := wsURLFor(cfg.baseURL)
	if err != nil {
		return fmt.Errorf("build ws URL: %w", err)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("open websocket: %w", err)
	}
	defer conn.Close()

	events := make(chan wsEvent, 64)
	readErrCh := make(chan error, 1)
	go readLoop(conn, events, readErrCh)

	if cfg.startDelay > 0 {
		time.Sleep(cfg.startDelay)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}

	if cfg.memoryID != "" {
		if err := loadMemory(conn, cfg.memoryID, events, readErrCh, cfg.turnTimeout); err != nil {
			return fmt.Errorf("load memory %s: %w", cfg.memoryID, err)
		}
		if cfg.verbose {
			fmt.Printf("perfvoice: memory %s loaded\n", cfg.memoryID)
		}
	}

	var timings []turnTiming
	for i := 0; i < cfg.turns; i++ {
		if cfg.verbose {
			fmt.Printf("perfvoice: turn %d/%d sample_rate=%dHz bytes=%d\n", i+1, cfg.turns, clip.SampleRate, len(clip.WAV))
		}
		if err := sendEvent(conn, protocol.EventStartStream, map[string]string{"format": "wav"}); err != nil {
			return fmt.Errorf("turn %d start: %w", i+1, err)
		}
		if err := sendTurnAudio(conn, clip, cfg.chunkMS, cfg.realtime); err != nil {
			return fmt.Errorf("turn %d send audio: %w", i+1, err)
		}
		if err := sendEvent(conn, protocol.EventStopStream, struct{}{}); err != nil {
			return fmt.Errorf("turn %d stop: %w", i+1, err)
		}
		timing, err := awaitTurn(time.Now(), events, readErrCh, cfg.turnTimeout)
		if err != nil {
			return fmt.Errorf("turn %d: %w", i+1, err)
		}
		if timing.AudioURL != "" {
			if err := claimAudio(ctx, httpClient, timing.AudioURL); err != nil {
				return fmt.Errorf("turn %d audio: %w", i+1, err)
			}
		}
		if cfg.verbose {
			fmt.Printf("perfvoice: turn %d transcript=%s text=%s audio=%s done=%s\n",
				i+1, ms(timing.Transcript), ms(timing.Text), ms(timing.Audio), ms(timing.Done))
		}
		timings = append(timings, timing)

		if cfg.interTurnDelay > 0 && i < cfg.turns-1 {
			time.Sleep(cfg.interTurnDelay)
		}
	}

	printSummary(os.Stdout, timings)
	return nil
}

func loadClip(path string) (audioClip, error) {
	if strings.TrimSpace(path) == "" {
		const rate = 16000
		pcm := tonePCM16(rate, 1500*time.Millisecond, 220)
		return audioClip{WAV: audio.EncodeWAVPCM16LE(pcm, rate), SampleRate: rate}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return audioClip{}, err
	}
	pcm, sampleRate, err := decodeWAVPCM16(data)
	if err != nil {
		return audioClip{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(pcm) == 0 {
		return audioClip{}, fmt.Errorf("%s contains no PCM bytes", path)
	}
	return audioClip{WAV: audio.EncodeWAVPCM16LE(pcm, sampleRate), SampleRate: sampleRate}, nil
}

func tonePCM16(sampleRate int, d time.Duration, hz float64) []byte {
	n := int(d.Seconds() * float64(sampleRate))
	out := make([]byte, n*2)
	for i := 0; i < n; i++ {
		v := int16(8000 * math.Sin(2*math.Pi*hz*float64(i)/float64(sampleRate)))
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

func wsURLFor(baseURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", err
	}
	switch strings.ToLower(u.Scheme) {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported base-url scheme %q", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return "", fmt.Errorf("base-url host is required")
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	u.RawQuery = ""
	return u.String(), nil
}

func readLoop(conn *websocket.Conn, events chan<- wsEvent, readErrCh chan<- error) {
	defer close(events)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case readErrCh <- err:
			default:
			}
			return
		}
		var ev wsEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		events <- ev
	}
}

func sendEvent(conn *websocket.Conn, name protocol.EventName, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return conn.WriteJSON(protocol.Envelope{Event: name, Data: raw})
}

func sendTurnAudio(conn *websocket.Conn, clip audioClip, chunkMS int, realtime float64) error {
	sampleRate := clip.SampleRate
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	bytesPerChunk := sampleRate * 2 * chunkMS / 1000
	if bytesPerChunk < 2 {
		bytesPerChunk = 2
	}
	for off := 0; off < len(clip.WAV); {
		end := off + bytesPerChunk
		if end > len(clip.WAV) {
			end = len(clip.WAV)
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, clip.WAV[off:end]); err != nil {
			return err
		}
		chunkDuration := time.Duration(float64(time.Duration(end-off)*time.Second/time.Duration(sampleRate*2)) / realtime)
		if chunkDuration <= 0 {
			chunkDuration = 10 * time.Millisecond
		}
		off = end
		time.Sleep(chunkDuration)
	}
	return nil
}

func loadMemory(conn *websocket.Conn, memoryID string, events <-chan wsEvent, readErrCh <-chan error, timeout time.Duration) error {
	if err := sendEvent(conn, protocol.EventLoadMemory, map[string]string{"memory_id": memoryID}); err != nil {
		return err
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return readErr(readErrCh)
			}
			data := decodeData(ev.Data)
			switch protocol.EventName(ev.Event) {
			case protocol.EventError:
				return errors.New(data.Message)
			case protocol.EventStatus:
				if strings.HasPrefix(data.Message, "Memory ") && strings.HasSuffix(data.Message, "loaded successfully.") {
					return nil
				}
			}
		case <-timer.C:
			return fmt.Errorf("timeout after %s", timeout)
		}
	}
}

// awaitTurn consumes events until the relay reports the turn finished.
func awaitTurn(sent time.Time, events <-chan wsEvent, readErrCh <-chan error, timeout time.Duration) (turnTiming, error) {
	var out turnTiming
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return out, readErr(readErrCh)
			}
			data := decodeData(ev.Data)
			switch protocol.EventName(ev.Event) {
			case protocol.EventTranscript:
				out.Transcript = time.Since(sent)
			case protocol.EventResponseText:
				out.Text = time.Since(sent)
			case protocol.EventAudioReady:
				out.Audio = time.Since(sent)
				out.AudioURL = data.AudioURL
			case protocol.EventError:
				return out, fmt.Errorf("relay error: %s", data.Message)
			case protocol.EventStatus:
				switch data.Message {
				case voice.StatusResponseSent:
					out.Done = time.Since(sent)
					return out, nil
				case voice.StatusUnavailable, voice.StatusFailed:
					return out, fmt.Errorf("relay status: %s", data.Message)
				}
			}
		case <-timer.C:
			return out, fmt.Errorf("timeout after %s", timeout)
		}
	}
}

func decodeData(raw json.RawMessage) wsData {
	var d wsData
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &d)
	}
	return d
}

func readErr(readErrCh <-chan error) error {
	select {
	case err := <-readErrCh:
		return fmt.Errorf("ws read: %w", err)
	default:
		return fmt.Errorf("ws closed")
	}
}

// claimAudio fetches a published reply and checks that a second fetch misses.
func claimAudio(ctx context.Context, client *http.Client, audioURL string) error {
	body, status, err := fetch(ctx, client, audioURL)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("GET %s: HTTP %d", audioURL, status)
	}
	if _, _, err := decodeWAVPCM16(body); err != nil {
		return fmt.Errorf("decode reply wav: %w", err)
	}
	_, status, err = fetch(ctx, client, audioURL)
	if err != nil {
		return err
	}
	if status != http.StatusNotFound {
		return fmt.Errorf("second GET %s: HTTP %d, want 404", audioURL, status)
	}
	return nil
}

func fetch(ctx context.Context, client *http.Client, target string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, err
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()
	body, err := io.ReadAll(io.LimitReader(res.Body, 40<<20))
	if err != nil {
		return nil, 0, err
	}
	return body, res.StatusCode, nil
}

func printSummary(w io.Writer, timings []turnTiming) {
	if len(timings) == 0 {
		return
	}
	pick := map[string]func(turnTiming) time.Duration{
		"transcript": func(t turnTiming) time.Duration { return t.Transcript },
		"text":       func(t turnTiming) time.Duration { return t.Text },
		"audio":      func(t turnTiming) time.Duration { return t.Audio },
		"done":       func(t turnTiming) time.Duration { return t.Done },
	}
	for _, name := range []string{"transcript", "text", "audio", "done"} {
		var samples []time.Duration
		for _, t := range timings {
			if d := pick[name](t); d > 0 {
				samples = append(samples, d)
			}
		}
		if len(samples) == 0 {
			continue
		}
		fmt.Fprintf(w, "perfvoice: %-10s n=%d p50=%s p95=%s\n", name, len(samples), ms(percentile(samples, 50)), ms(percentile(samples, 95)))
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(math.Ceil(float64(p)/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func ms(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return fmt.Sprintf("%dms", d.Milliseconds())
}

func decodeWAVPCM16(data []byte) ([]byte, int, error) {
	if len(data) < 12 {
		return nil, 0, fmt.Errorf("wav too short")
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("unsupported wav header")
	}

	var (
		haveFmt     bool
		audioFormat uint16
		channels    uint16
		sampleRate  int
		bitsPerSamp uint16
		pcmData     []byte
	)
	for off := 12; off+8 <= len(data); {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		off += 8
		if size < 0 || off+size > len(data) {
			return nil, 0, fmt.Errorf("invalid wav chunk size")
		}
		chunk := data[off : off+size]
		switch id {
		case "fmt ":
			if len(chunk) < 16 {
				return nil, 0, fmt.Errorf("invalid wav fmt chunk")
			}
			audioFormat = binary.LittleEndian.Uint16(chunk[0:2])
			channels = binary.LittleEndian.Uint16(chunk[2:4])
			sampleRate = int(binary.LittleEndian.Uint32(chunk[4:8]))
			bitsPerSamp = binary.LittleEndian.Uint16(chunk[14:16])
			haveFmt = true
		case "data":
			pcmData = append(pcmData[:0], chunk...)
		}
		off += size
		if size%2 == 1 {
			off++
		}
	}
	if !haveFmt {
		return nil, 0, fmt.Errorf("wav fmt chunk missing")
	}
	if len(pcmData) == 0 {
		return nil, 0, fmt.Errorf("wav data chunk missing")
	}
	if audioFormat != 1 {
		return nil, 0, fmt.Errorf("unsupported wav audio format %d", audioFormat)
	}
	if bitsPerSamp != 16 {
		return nil, 0, fmt.Errorf("unsupported wav bits_per_sample %d", bitsPerSamp)
	}
	if channels == 0 {
		return nil, 0, fmt.Errorf("invalid wav channels=0")
	}
	if sampleRate <= 0 {
		sampleRate = 16000
	}

	if channels == 1 {
		if len(pcmData)%2 != 0 {
			pcmData = pcmData[:len(pcmData)-1]
		}
		return pcmData, sampleRate, nil
	}

	frameBytes := int(channels) * 2
	if frameBytes <= 0 || len(pcmData) < frameBytes {
		return nil, 0, fmt.Errorf("invalid wav frame bytes")
	}
	frameCount := len(pcmData) / frameBytes
	mono := make([]byte, frameCount*2)
	for i := 0; i < frameCount; i++ {
		base := i * frameBytes
		sum := 0
		for ch := 0; ch < int(channels); ch++ {
			s := int16(binary.LittleEndian.Uint16(pcmData[base+ch*2 : base+ch*2+2]))
			sum += int(s)
		}
		avg := int16(sum / int(channels))
		binary.LittleEndian.PutUint16(mono[i*2:i*2+2], uint16(avg))
	}
	return mono, sampleRate, nil
}
