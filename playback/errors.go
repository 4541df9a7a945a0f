package playback

import "errors"

var (
	// ErrSinkNotStarted is returned by AddNode, RemoveNode and Connect when
	// the Loop is not running (before Play, or after its worker has
	// exited), and is the reply to edits still queued when the worker
	// stops. Stop never returns it.
	ErrSinkNotStarted = errors.New("playback: loop is not running")

	// ErrStreamSendError wraps a failure to enqueue onto the request or
	// response channel.
	ErrStreamSendError = errors.New("playback: stream send error")

	// ErrStreamReceiveError wraps a failure to receive the matching
	// response for a request, or an unexpected response kind.
	ErrStreamReceiveError = errors.New("playback: stream receive error")

	// ErrSinkError wraps a failure reported by the AudioSink itself.
	ErrSinkError = errors.New("playback: sink error")
)
