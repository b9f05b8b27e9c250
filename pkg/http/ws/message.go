package ws

import "encoding/json"

// Server -> client message types for the spectator feed. The payloads mirror
// the engine's event structs one to one.
const (
	TypeSessionState     = "session_state"
	TypeQuestionOpened   = "question_opened"
	TypeTimerTick        = "timer_tick"
	TypeTurnSwitched     = "turn_switched"
	TypeAnswerRevealed   = "answer_revealed"
	TypeQuestionResolved = "question_resolved"
	TypePowerUpGranted   = "power_up_granted"
	TypePowerUpUsed      = "power_up_used"
	TypeCellBlocked      = "cell_blocked"
	TypeQuestionSwapped  = "question_swapped"
	TypeSessionFinished  = "session_finished"
	TypeError            = "error"
	TypePing             = "ping"
	TypePong             = "pong"
)

// Message wraps all WebSocket payloads with a type tag.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage marshals a payload into a typed message. Marshal failures are
// returned so callers can log and drop the message.
func NewMessage(msgType string, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: msgType, Payload: data}, nil
}

// ErrorPayload reports a protocol-level failure to the client.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
