package http2ingress

import "sync"

// FlowController tracks per-stream inbound window consumption and
// emits WINDOW_UPDATE increments through emit once half of the
// initial window has been consumed without a credit — the common
// compromise between update frequency and stalling the sender. The
// controller is also handed the request body's back-pressure signal:
// Consume is only called once the corresponding bytes have actually
// been handed to (and accepted by) the body stream, so a slow reader
// throttles how fast window credit is returned to the peer.
type FlowController struct {
	mu             sync.Mutex
	initialWindow  int32
	consumed       map[uint32]int32
	emit           func(streamID uint32, increment int32)
}

func NewFlowController(initialWindow int32, emit func(streamID uint32, increment int32)) *FlowController {
	return &FlowController{
		initialWindow: initialWindow,
		consumed:      map[uint32]int32{},
		emit:          emit,
	}
}

// Consume records n bytes of inbound payload for streamID and emits a
// WINDOW_UPDATE once the accumulated unacknowledged total reaches half
// the initial window.
func (fc *FlowController) Consume(streamID uint32, n int32) {
	if n <= 0 {
		return
	}
	fc.mu.Lock()
	defer fc.mu.Unlock()

	fc.consumed[streamID] += n
	if fc.consumed[streamID] >= fc.initialWindow/2 {
		increment := fc.consumed[streamID]
		fc.consumed[streamID] = 0
		fc.emit(streamID, increment)
	}
}

// Forget drops any pending accounting for streamID once its stream
// closes, so a long-lived connection's map does not grow unbounded.
func (fc *FlowController) Forget(streamID uint32) {
	fc.mu.Lock()
	delete(fc.consumed, streamID)
	fc.mu.Unlock()
}
