package app

import "sync"

// Frames fans the latest composited JPEG out to subscribers.
// Slow subscribers only ever see the newest frame.
type Frames struct {
	mu     sync.Mutex
	latest []byte
	subs   map[chan []byte]struct{}
}

// NewFrames creates an empty broadcaster.
func NewFrames() *Frames {
	return &Frames{subs: make(map[chan []byte]struct{})}
}

// Publish stores frame as the latest and offers it to every subscriber.
func (f *Frames) Publish(frame []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.latest = frame
	for ch := range f.subs {
		select {
		case <-ch:
		default:
		}
		ch <- frame
	}
}

// Latest returns the most recent frame, or nil before the first publish.
func (f *Frames) Latest() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest
}

// Subscribe returns a channel of frames and a function that cancels the subscription.
func (f *Frames) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, 1)

	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, ch)
			f.mu.Unlock()
		})
	}
}
