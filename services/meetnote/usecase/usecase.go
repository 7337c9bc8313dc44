package usecase

import (
	"context"
	"sync"

	config "github.com/Theagentvikram/MeetNote/config/meetnote"
	"github.com/Theagentvikram/MeetNote/services/meetnote/consts"
	"github.com/Theagentvikram/MeetNote/services/meetnote/entity"
	"github.com/Theagentvikram/MeetNote/services/meetnote/storage"
)

// Transcriber is the speech engine adapter. Implementations degrade to a
// placeholder instead of returning errors.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename, language string) *entity.Transcription
	Mode() string
}

// Summarizer is the LLM adapter. Implementations degrade to fallback text
// instead of returning errors.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) *entity.Summary
	DescribeHighlight(ctx context.Context, excerpt string) string
	Mode() string
}

type Usecase interface {
	Register(ctx context.Context, req *entity.RegisterRequest) (*entity.TokenResponse, error)
	Login(ctx context.Context, req *entity.LoginRequest) (*entity.TokenResponse, error)
	Authenticate(ctx context.Context, token string) (*entity.User, error)
	GetUser(ctx context.Context, id string) (*entity.User, error)
	DeleteAccount(ctx context.Context, userID string) error

	CreateMeeting(ctx context.Context, userID string, req *entity.CreateMeetingRequest) (*entity.Meeting, error)
	GetMeeting(ctx context.Context, userID, meetingID string) (*entity.Meeting, error)
	ListMeetings(ctx context.Context, userID string, limit, offset int) ([]*entity.Meeting, error)
	DeleteMeeting(ctx context.Context, userID, meetingID string) error
	UploadAudio(ctx context.Context, userID, meetingID, filename string, audio []byte) (*entity.UploadAudioResponse, error)
	StopMeeting(ctx context.Context, userID, meetingID string) (*entity.Meeting, error)

	CreateHighlight(ctx context.Context, userID, meetingID string, req *entity.CreateHighlightRequest) (*entity.Highlight, error)
	ListHighlights(ctx context.Context, userID, meetingID string) ([]*entity.Highlight, error)

	Health(ctx context.Context) *entity.HealthStatus
}

type usecase struct {
	cfg         *config.Config
	storage     storage.Storage
	transcriber Transcriber
	summarizer  Summarizer

	// mu guards locks; one mutex per meeting serializes concurrent uploads to
	// the same meeting id.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(cfg *config.Config, stg storage.Storage, transcriber Transcriber, summarizer Summarizer) Usecase {
	return &usecase{
		cfg:         cfg,
		storage:     stg,
		transcriber: transcriber,
		summarizer:  summarizer,
		locks:       make(map[string]*sync.Mutex),
	}
}

func (u *usecase) meetingLock(meetingID string) *sync.Mutex {
	u.mu.Lock()
	defer u.mu.Unlock()

	lock, ok := u.locks[meetingID]
	if !ok {
		lock = &sync.Mutex{}
		u.locks[meetingID] = lock
	}
	return lock
}

func (u *usecase) Health(ctx context.Context) *entity.HealthStatus {
	database := "ok"
	status := "healthy"
	if err := u.storage.Ping(ctx); err != nil {
		database = "unavailable"
		status = "degraded"
	}

	return &entity.HealthStatus{
		Status:     status,
		Database:   database,
		Whisper:    u.transcriber.Mode(),
		Summarizer: u.summarizer.Mode(),
		Version:    consts.Version,
	}
}
