package orch

import (
	"sync"
	"time"

	"github.com/dkeye/lanhub/internal/app"
	"github.com/dkeye/lanhub/internal/protocol"
)

// Publisher receives a copy of every public event sent to clients.
type Publisher interface {
	Publish(v any)
}

type Orchestrator struct {
	Registry  *app.Registry
	Presenter *app.Presenter
	Files     *app.FileStore
	Policy    app.Policy
	Events    Publisher

	// MaxFileSize bounds an upload in bytes; zero means unlimited.
	MaxFileSize int64
	Now         func() time.Time

	// presMu orders presenter transitions with the notices that announce
	// them. Taken before any registry lock; sends under it only enqueue.
	presMu sync.Mutex
}

func New(reg *app.Registry, presenter *app.Presenter, files *app.FileStore, policy app.Policy) *Orchestrator {
	return &Orchestrator{
		Registry:  reg,
		Presenter: presenter,
		Files:     files,
		Policy:    policy,
	}
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o *Orchestrator) timestamp() string {
	return o.now().Format(protocol.TimestampLayout)
}

func (o *Orchestrator) publish(v any) {
	if o.Events != nil {
		o.Events.Publish(v)
	}
}
