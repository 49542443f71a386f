// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package actor

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/multierr"

	"github.com/JACKJKL/comedy/config"
	"github.com/JACKJKL/comedy/log"
	"github.com/JACKJKL/comedy/marshal"
)

// ActorSystem owns the single root actor and the process-wide registries
// a tree of actors shares: the marshaller registry and the optional
// actors.json overrides (§1, §6).
type ActorSystem struct {
	root       *PID
	marshals   *marshal.Registry
	configFile *config.File
	logger     log.Logger

	listenMu sync.Mutex
	server   *ListeningServer
}

var (
	defaultSystem     *ActorSystem
	defaultSystemOnce sync.Once
	defaultSystemErr  error
)

// Default lazily constructs the process-wide default ActorSystem on first
// use, mirroring the source's module-level singleton (§1 "single logical
// root actor per process").
func Default() (*ActorSystem, error) {
	defaultSystemOnce.Do(func() {
		defaultSystem, defaultSystemErr = NewSystem(Options{}, Behaviour{}, nil)
	})
	return defaultSystem, defaultSystemErr
}

// NewSystem builds a fresh ActorSystem with its own root actor, behaving
// like Default but usable in tests that need isolation instead of the
// process-wide singleton.
func NewSystem(rootOpts Options, rootDef Behaviour, logger log.Logger) (*ActorSystem, error) {
	if logger == nil {
		logger = log.DefaultLogger
	}
	cfgFile, err := config.Load(config.DefaultFile)
	if err != nil {
		return nil, err
	}
	sys := &ActorSystem{
		marshals:   marshal.NewRegistry(),
		configFile: cfgFile,
		logger:     logger,
	}
	registerDefaultMarshallers(sys.marshals)

	root := newPID(sys, nil, rootOpts.Name, rootDef, rootOpts.CustomParameters, logger)
	if err := root.initializeSelf(context.Background()); err != nil {
		return nil, err
	}
	sys.root = root
	return sys, nil
}

// Root returns the system's root actor, the ancestor of every actor
// CreateActor produces.
func (s *ActorSystem) Root() Ref { return s.root }

// Marshallers returns the system-wide payload marshaller registry so
// callers can register additional Marshaller implementations (§4.6).
func (s *ActorSystem) Marshallers() *marshal.Registry { return s.marshals }

// CreateActor creates a new actor as a child of the system's root,
// merging any actors.json override for opts.Name underneath the caller's
// options, per §6.
func (s *ActorSystem) CreateActor(ctx context.Context, opts Options, def Behaviour) (Ref, error) {
	opts = s.applyFileOverrides(opts)
	return s.root.CreateChild(ctx, opts, def)
}

// applyFileOverrides merges actors.json's entry for opts.Name underneath
// the given options: a file-declared field is used only where the caller
// left that field unset, so the caller's own values win (§6).
func (s *ActorSystem) applyFileOverrides(opts Options) Options {
	fileOpts, ok := s.configFile.For(opts.Name)
	if !ok {
		return opts
	}
	if opts.Mode == "" && fileOpts.Mode != "" {
		opts.Mode = Mode(fileOpts.Mode)
	}
	if opts.PingTimeout <= 0 && fileOpts.PingTimeout > 0 {
		opts.PingTimeout = time.Duration(fileOpts.PingTimeout) * time.Second
	}
	if opts.OnCrash == "" && fileOpts.OnCrash != "" {
		opts.OnCrash = fileOpts.OnCrash
	}
	if opts.ClusterSize <= 0 && fileOpts.ClusterSize > 0 {
		opts.ClusterSize = fileOpts.ClusterSize
	}
	if opts.Cluster == "" && fileOpts.Cluster != "" {
		opts.Cluster = fileOpts.Cluster
	}
	if len(opts.Host) == 0 && len(fileOpts.Host) > 0 {
		opts.Host = fileOpts.Host
	}
	if opts.LogLevel == "" && fileOpts.LogLevel != "" {
		opts.LogLevel = fileOpts.LogLevel
	}
	if len(fileOpts.Custom) > 0 {
		if opts.CustomParameters == nil {
			opts.CustomParameters = map[string]any{}
		}
		for k, v := range fileOpts.Custom {
			if _, set := opts.CustomParameters[k]; !set {
				opts.CustomParameters[k] = v
			}
		}
	}
	return opts
}

// Listen starts the listening server used by remote children to reach
// this process on addr (default ":6161"), so a peer process can dial in
// and have a worker forked on demand (§4.3, §6 addendum).
func (s *ActorSystem) Listen(ctx context.Context, addr string) error {
	s.listenMu.Lock()
	defer s.listenMu.Unlock()
	if s.server != nil {
		return nil
	}
	srv, err := newListeningServer(s, addr, s.logger)
	if err != nil {
		return err
	}
	s.server = srv
	go srv.Serve(ctx)

	if host, port, ok := advertiseHostPort(addr); ok {
		s.marshals.Register(newInterHostRefMarshaller(host, port))
	}
	return nil
}

// Destroy tears down the root actor (and transitively every descendant)
// and the system's marshaller registry.
func (s *ActorSystem) Destroy(ctx context.Context) error {
	s.listenMu.Lock()
	if s.server != nil {
		s.server.Close()
		s.server = nil
	}
	s.listenMu.Unlock()

	destroyErr := s.root.Destroy(ctx)
	return multierr.Append(destroyErr, s.marshals.Destroy())
}

// WaitForShutdown blocks until SIGINT or SIGTERM arrives, or ctx is done,
// and then calls Destroy. The worker bootstrap in bootstrap.go does not
// install signal handlers of its own.
func (s *ActorSystem) WaitForShutdown(ctx context.Context) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}
	_ = s.Destroy(context.Background())
}
