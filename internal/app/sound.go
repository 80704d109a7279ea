package app

// Tone names the one-shot effect cues the engine raises.
type Tone string

const (
	ToneCorrect  Tone = "correct"
	ToneWrong    Tone = "wrong"
	ToneTimeout  Tone = "timeout"
	ToneGameOver Tone = "gameover"
	ToneMatchup  Tone = "matchup"
)

// Sound is the side-effect port for audio cues. It is owned by the
// playthrough and disposed with it; implementations must tolerate
// StopRepeatingTone without a prior start. The repeating tone is the
// last-ten-seconds countdown warning.
type Sound interface {
	PlayTone(t Tone)
	StartRepeatingTone()
	StopRepeatingTone()
}

// NopSound is the default silent implementation.
type NopSound struct{}

func (NopSound) PlayTone(Tone)       {}
func (NopSound) StartRepeatingTone() {}
func (NopSound) StopRepeatingTone()  {}
