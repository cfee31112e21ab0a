// Package dependency wires core datasage services using go.uber.org/dig.
package dependency

import (
	"fmt"
	"time"

	"go.uber.org/dig"

	"github.com/datasage/datasage/internal/assistant"
	"github.com/datasage/datasage/internal/bus"
	"github.com/datasage/datasage/internal/catalog"
	"github.com/datasage/datasage/internal/channels"
	"github.com/datasage/datasage/internal/config"
	"github.com/datasage/datasage/internal/engine"
	"github.com/datasage/datasage/internal/maintenance"
	"github.com/datasage/datasage/internal/mcpclient"
	"github.com/datasage/datasage/internal/mcpserver"
)

// Container holds the resolved core service singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type Container struct {
	msgBus      *bus.MessageBus
	catalog     *catalog.Adapter
	toolServer  *mcpserver.Server
	gateway     *mcpclient.Gateway
	loop        *assistant.Loop
	channels    *channels.Manager
	maintenance *maintenance.Service
}

func (c *Container) MessageBus() *bus.MessageBus       { return c.msgBus }
func (c *Container) Catalog() *catalog.Adapter         { return c.catalog }
func (c *Container) ToolServer() *mcpserver.Server     { return c.toolServer }
func (c *Container) Gateway() *mcpclient.Gateway       { return c.gateway }
func (c *Container) AssistantLoop() *assistant.Loop    { return c.loop }
func (c *Container) Channels() *channels.Manager       { return c.channels }
func (c *Container) Maintenance() *maintenance.Service { return c.maintenance }

// New builds and wires all core services from cfg.
func New(cfg *config.Config) (*Container, error) {
	d := dig.New()

	if err := d.Provide(func() *config.Config { return cfg }); err != nil {
		return nil, err
	}
	if err := d.Provide(newMessageBus); err != nil {
		return nil, err
	}
	if err := d.Provide(newCatalogAdapter); err != nil {
		return nil, err
	}
	if err := d.Provide(newToolServer); err != nil {
		return nil, err
	}
	if err := d.Provide(newToolSession); err != nil {
		return nil, err
	}
	if err := d.Provide(newToolGateway); err != nil {
		return nil, err
	}
	if err := d.Provide(newEngine); err != nil {
		return nil, err
	}
	if err := d.Provide(newAssistantLoop); err != nil {
		return nil, err
	}
	if err := d.Provide(newChannelManager); err != nil {
		return nil, err
	}
	if err := d.Provide(newMaintenance); err != nil {
		return nil, err
	}

	var result *Container
	err := d.Invoke(func(
		msgBus *bus.MessageBus,
		cat *catalog.Adapter,
		toolServer *mcpserver.Server,
		gateway *mcpclient.Gateway,
		loop *assistant.Loop,
		chans *channels.Manager,
		maint *maintenance.Service,
	) {
		result = &Container{
			msgBus:      msgBus,
			catalog:     cat,
			toolServer:  toolServer,
			gateway:     gateway,
			loop:        loop,
			channels:    chans,
			maintenance: maint,
		}
	})
	return result, err
}

func newMessageBus() *bus.MessageBus {
	return bus.NewMessageBus(100)
}

func newCatalogAdapter(cfg *config.Config) (*catalog.Adapter, error) {
	if cfg.Catalog.BaseURL == "" {
		return nil, fmt.Errorf("no catalog base URL configured, edit %s", config.ConfigPath())
	}

	client := catalog.NewClient(
		cfg.Catalog.BaseURL,
		cfg.Catalog.APIToken,
		time.Duration(cfg.Catalog.TimeoutSeconds)*time.Second,
	)
	ttl := time.Duration(cfg.Catalog.CacheTTLSeconds) * time.Second

	return catalog.NewAdapter(client, catalog.NewResponseCache(), catalog.NewIdentifierCache(), ttl), nil
}

func newToolServer(cfg *config.Config, cat *catalog.Adapter) *mcpserver.Server {
	return mcpserver.NewServer(cat, cfg.ToolServer.Host, cfg.ToolServer.Port)
}

func newToolSession(cfg *config.Config) *mcpclient.Session {
	timeout := time.Duration(cfg.MCP.SessionTimeoutSeconds) * time.Second
	return mcpclient.NewSession(cfg.MCP.ServerURL, timeout)
}

func newToolGateway(session *mcpclient.Session) *mcpclient.Gateway {
	return mcpclient.NewGateway(session)
}

func newEngine(cfg *config.Config, gateway *mcpclient.Gateway) *engine.Engine {
	return engine.New(
		cfg.Model.APIKey,
		cfg.Model.Name,
		cfg.Model.MaxTokens,
		cfg.Model.MaxRounds,
		gateway,
	)
}

func newAssistantLoop(b *bus.MessageBus, e *engine.Engine) *assistant.Loop {
	return assistant.NewLoop(b, e)
}

func newChannelManager(cfg *config.Config, b *bus.MessageBus) *channels.Manager {
	return channels.NewManager(cfg, b)
}

func newMaintenance(cfg *config.Config, cat *catalog.Adapter, gateway *mcpclient.Gateway) *maintenance.Service {
	flush := func() {
		cat.ClearCaches()
		gateway.ResetCatalog()
	}
	return maintenance.NewService(cfg.Maintenance.CacheFlushSchedule, flush)
}
