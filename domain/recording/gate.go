package recording

import (
	"fmt"
	"image"
	"time"
)

// WriteFrame hands img to the open encoder when the write gate is open.
// A failed or panicking write closes the gate and is logged; it never
// propagates to the caller and leaves the status and the encoder untouched.
// The gate is reopened only by StartOrResume.
func (m *Machine) WriteFrame(img *image.RGBA) bool {
	select {
	case m.writeSlot <- struct{}{}:
	default:
		// Stop is tearing the session down.
		return false
	}
	defer m.releaseWriteSlot()

	m.mu.Lock()
	gate, sess := m.gate, m.session
	m.mu.Unlock()
	if !gate || sess == nil || img == nil {
		return false
	}

	if err := safeWrite(sess.enc, img); err != nil {
		m.failures.Add(1)
		m.mu.Lock()
		if m.session == sess {
			m.gate = false
		}
		m.mu.Unlock()
		m.logger.Error("frame write failed; writes disabled until resume", "file", sess.path, "error", err)
		return false
	}
	sess.frames.Add(1)
	m.written.Add(1)
	return true
}

func safeWrite(enc Encoder, img *image.RGBA) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("encoder panic: %v", r)
		}
	}()
	return enc.WriteFrame(img)
}

func (m *Machine) acquireWriteSlot(timeout time.Duration) bool {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case m.writeSlot <- struct{}{}:
		return true
	case <-t.C:
		return false
	}
}

func (m *Machine) releaseWriteSlot() { <-m.writeSlot }

// AwaitClosed waits up to timeout for a deferred encoder close to finish.
func (m *Machine) AwaitClosed(timeout time.Duration) bool {
	m.mu.Lock()
	done := m.closed
	m.mu.Unlock()
	if done == nil {
		return true
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-done:
		m.mu.Lock()
		if m.closed == done {
			m.closed = nil
		}
		m.mu.Unlock()
		return true
	case <-t.C:
		return false
	}
}
