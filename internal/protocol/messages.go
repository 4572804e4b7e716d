package protocol

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dkeye/lanhub/internal/domain"
	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
)

type Type string

const (
	TypeRegister            Type = "register"
	TypeWelcome             Type = "welcome"
	TypeUserJoined          Type = "user_joined"
	TypeUserLeft            Type = "user_left"
	TypeChat                Type = "chat"
	TypePrivateChat         Type = "private_chat"
	TypeVideoRegister       Type = "video_register"
	TypeAudioRegister       Type = "audio_register"
	TypeStartPresentation   Type = "start_presentation"
	TypeStopPresentation    Type = "stop_presentation"
	TypePresentationStarted Type = "presentation_started"
	TypePresentationStopped Type = "presentation_stopped"
	TypePresentationControl Type = "presentation_control"
	TypeScreenFrame         Type = "screen_frame"
	TypeFileUpload          Type = "file_upload"
	TypeFileAvailable       Type = "file_available"
	TypeFileDownload        Type = "file_download"
	TypeFileData            Type = "file_data"
	TypeSystem              Type = "system"
)

// TimestampLayout is the wall-clock format of chat timestamps.
const TimestampLayout = "15:04:05"

const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

const (
	StatusStarted = "started"
	StatusDenied  = "denied"
)

var ErrBadMessage = errors.New("bad message")

var validate = validator.New(validator.WithRequiredStructEnabled())

// ---- inbound ----

type Envelope struct {
	Type Type `json:"type"`
}

type Register struct {
	Username string `json:"username" validate:"required"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

type PrivateChatRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

type EndpointRegister struct {
	Address Address `json:"address" validate:"required"`
}

type ScreenFrameRequest struct {
	FrameData string          `json:"frame_data" validate:"required"`
	FrameID   json.RawMessage `json:"frame_id,omitempty"`
}

type FileUpload struct {
	FileID   string `json:"file_id" validate:"required"`
	Filename string `json:"filename" validate:"required"`
	Size     int64  `json:"size" validate:"gte=0"`
	Data     []byte `json:"data"`
}

// UploadHeadroom is the frame budget left for the JSON envelope, file id and
// filename of a file_upload.
const UploadHeadroom = 64 << 10

// UploadFrameSize returns the largest file_upload payload that carries size
// bytes of base64-encoded file data.
func UploadFrameSize(size int64) int64 {
	return 4*((size+2)/3) + UploadHeadroom
}

type FileDownload struct {
	FileID string `json:"file_id" validate:"required"`
}

// Address is a UDP endpoint sent as a JSON [host, port] pair.
type Address struct {
	Host string
	Port uint16
}

func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{a.Host, a.Port})
}

func (a *Address) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("address: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("address: want [host, port], got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &a.Host); err != nil {
		return fmt.Errorf("address host: %w", err)
	}
	var port json.Number
	if err := json.Unmarshal(pair[1], &port); err != nil {
		var s string
		if err2 := json.Unmarshal(pair[1], &s); err2 != nil {
			return fmt.Errorf("address port: %w", err)
		}
		port = json.Number(s)
	}
	p, err := strconv.ParseUint(port.String(), 10, 16)
	if err != nil || p == 0 {
		return fmt.Errorf("address port %q out of range", port)
	}
	a.Port = uint16(p)
	return nil
}

// ---- outbound ----

type Welcome struct {
	Type    Type              `json:"type"`
	Message string            `json:"message"`
	Users   []domain.Identity `json:"users"`
}

// Presence is sent as user_joined and user_left.
type Presence struct {
	Type     Type              `json:"type"`
	Username domain.Identity   `json:"username"`
	Users    []domain.Identity `json:"users"`
}

type Chat struct {
	Type      Type            `json:"type"`
	Username  domain.Identity `json:"username"`
	Message   string          `json:"message"`
	Timestamp string          `json:"timestamp"`
}

type PrivateChat struct {
	Type      Type            `json:"type"`
	From      domain.Identity `json:"from"`
	To        string          `json:"to"`
	Message   string          `json:"message"`
	Timestamp string          `json:"timestamp"`
}

// Presentation is sent as presentation_started and presentation_stopped.
type Presentation struct {
	Type     Type            `json:"type"`
	Username domain.Identity `json:"username"`
}

type PresentationControl struct {
	Type     Type            `json:"type"`
	Status   string          `json:"status"`
	Username domain.Identity `json:"username,omitempty"`
	Message  string          `json:"message,omitempty"`
}

type ScreenFrame struct {
	Type      Type            `json:"type"`
	Username  domain.Identity `json:"username"`
	FrameData string          `json:"frame_data"`
	FrameID   json.RawMessage `json:"frame_id,omitempty"`
}

type FileAvailable struct {
	Type     Type            `json:"type"`
	FileID   string          `json:"file_id"`
	Filename string          `json:"filename"`
	Size     int64           `json:"size"`
	Uploader domain.Identity `json:"uploader"`
}

type FileData struct {
	Type     Type   `json:"type"`
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Data     []byte `json:"data"`
}

type System struct {
	Type    Type   `json:"type"`
	Message string `json:"message"`
	Level   string `json:"level"`
}

func NewSystem(level, format string, args ...any) System {
	return System{Type: TypeSystem, Message: fmt.Sprintf(format, args...), Level: level}
}

// ---- codec ----

// Marshal encodes v as JSON and frames it.
func Marshal(v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	return Encode(payload)
}

// PeekType returns the tag of a control payload.
func PeekType(payload []byte) (Type, error) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return "", fmt.Errorf("%w: %w", ErrBadMessage, err)
	}
	if env.Type == "" {
		return "", fmt.Errorf("%w: missing type", ErrBadMessage)
	}
	return env.Type, nil
}

// Decode unmarshals payload into v and checks its required fields.
func Decode(payload []byte, v any) error {
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %w", ErrBadMessage, err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBadMessage, err)
	}
	return nil
}
