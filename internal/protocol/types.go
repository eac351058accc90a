package protocol

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
const (
	// Client to server messages
	MessageTypeJoin                MessageType = "join"
	MessageTypeEnterName           MessageType = "enterName"
	MessageTypePlayCard            MessageType = "playCard"
	MessageTypeRevealPreviousCards MessageType = "revealPreviousCards"

	// Server to client messages
	MessageTypeInitialState       MessageType = "initialState"
	MessageTypeReadyPlayersUpdate MessageType = "readyPlayersUpdate"
	MessageTypeStartGame          MessageType = "startGame"
	MessageTypePlayerCount        MessageType = "playerCount"
	MessageTypeUpdateAllPlayers   MessageType = "updateAllPlayers"
	MessageTypeTurnChange         MessageType = "turnChange"
	MessageTypeAnnouncement       MessageType = "announcement"
	MessageTypeDialogEvent        MessageType = "dialogEvent"
	MessageTypeRevealResult       MessageType = "revealResult"
	MessageTypeError              MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Error codes carried in ErrorData
const (
	ErrorCodeRoomFull = "room_full"
)
