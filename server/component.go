package server

import (
	"context"
	"fmt"

	"github.com/kbukum/scribe/component"
)

const componentName = "http-server"

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component wraps Server for the component registry.
type Component struct {
	server *Server
}

// NewComponent returns a component.Component backed by the given Server.
func NewComponent(s *Server) *Component {
	return &Component{server: s}
}

func (sc *Component) Name() string { return componentName }

func (sc *Component) Start(ctx context.Context) error {
	return sc.server.Start(ctx)
}

func (sc *Component) Stop(ctx context.Context) error {
	return sc.server.Stop(ctx)
}

func (sc *Component) Health(_ context.Context) component.Health {
	if sc.server.addr == nil {
		return component.Health{Name: componentName, Status: component.StatusUnhealthy, Message: "HTTP server not listening"}
	}
	return component.Health{Name: componentName, Status: component.StatusHealthy}
}

func (sc *Component) Describe() string {
	return fmt.Sprintf("listen=%s routes=%d", sc.server.Addr(), len(sc.server.engine.Routes()))
}
