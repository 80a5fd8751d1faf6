package sound

import (
	"fmt"
	"os"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
)

const WarningSound = "/sounds/warning.wav"

type Interface interface {
	// Play queues a wav file.  It never blocks; a sound queued while another
	// is pending is dropped.
	Play(path string)
}

type Speaker struct {
	sounds chan string
}

func Init() *Speaker {
	s := &Speaker{sounds: make(chan string, 1)}
	go s.loop()
	return s
}

func (s *Speaker) Play(path string) {
	select {
	case s.sounds <- path:
	default:
		fmt.Println("Sound: busy, dropping", path)
	}
}

func (s *Speaker) drain() {
	for p := range s.sounds {
		fmt.Println("Sound: unable to play", p)
	}
}

func (s *Speaker) loop() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Println("Sound: speaker failed:", r)
		}
		s.drain()
	}()
	sampleRate := beep.SampleRate(44100)
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/5)); err != nil {
		fmt.Println("Sound: failed to open speaker", err)
		return
	}
	var ctrl *beep.Ctrl
	var stream beep.StreamSeekCloser
	for path := range s.sounds {
		if ctrl != nil {
			speaker.Lock()
			ctrl.Paused = true
			ctrl.Streamer = nil
			speaker.Unlock()
			ctrl = nil
		}
		if stream != nil {
			_ = stream.Close()
			stream = nil
		}

		f, err := os.Open(path)
		if err != nil {
			fmt.Println("Sound: failed to open", err)
			continue
		}
		decoded, _, err := wav.Decode(f)
		if err != nil {
			fmt.Println("Sound: failed to decode", err)
			_ = f.Close()
			continue
		}
		stream = decoded
		ctrl = &beep.Ctrl{Streamer: decoded}
		speaker.Play(ctrl)
	}
}

type Dummy struct {
	Played []string
}

func (d *Dummy) Play(path string) {
	d.Played = append(d.Played, path)
}
