package app

import (
	"context"
	"fmt"
	"time"

	"github.com/samvad-hq/simplest-networking/internal/config"
	"github.com/samvad-hq/simplest-networking/internal/fixtures"
	"github.com/samvad-hq/simplest-networking/internal/logger"
	"github.com/samvad-hq/simplest-networking/pkg/api"
	"github.com/samvad-hq/simplest-networking/pkg/endpoint"
	"github.com/samvad-hq/simplest-networking/pkg/fetch"
	"github.com/samvad-hq/simplest-networking/pkg/httpclient"
	"github.com/samvad-hq/simplest-networking/pkg/mocktransport"
)

// Playground wires configuration, transport and the users API, then walks through
// building and sending the example requests.
type Playground struct {
	cfg      *config.Config
	service  *api.Service
	endpoint []endpoint.Option
	log      logger.Logger
	store    fixtures.Store
}

// NewPlayground builds the runtime from config.
func NewPlayground(cfg *config.Config, log logger.Logger) (*Playground, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	opts := []httpclient.Option{}
	if logger.S != nil {
		opts = append(opts, httpclient.WithLogger(logger.S))
	}

	store, err := fixtures.NewStore(cfg.FixturesType, cfg.FixturesPath)
	if err != nil {
		return nil, fmt.Errorf("init fixtures: %w", err)
	}
	if cfg.Offline() {
		if err := seedFixtures(store, cfg.FixturesFile); err != nil {
			store.Close()
			return nil, err
		}
		n, _ := store.Len()
		log.InfoObj("fixtures initialized", "fixtures_config", map[string]any{
			"type":  cfg.FixturesType,
			"path":  cfg.FixturesPath,
			"file":  cfg.FixturesFile,
			"count": n,
		})
		opts = append(opts, httpclient.WithTransport(mocktransport.New(fixtures.Handler(store))))
	}

	endpointOpts := []endpoint.Option{
		endpoint.WithScheme(cfg.APIScheme),
		endpoint.WithHost(cfg.APIHost),
	}
	serviceOpts := []api.ServiceOption{api.WithEndpointOptions(endpointOpts...)}
	if cfg.EndpointsFile != "" {
		cat, err := endpoint.LoadCatalog(cfg.EndpointsFile)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("load endpoints catalog: %w", err)
		}
		log.InfoObj("endpoints catalog loaded", "endpoints_meta", map[string]any{
			"count": len(cat.Names()),
			"names": cat.Names(),
		})
		serviceOpts = append(serviceOpts, api.WithCatalog(cat))
	}

	client := fetch.NewClient(httpclient.NewRestyClient(cfg.RequestTimeout, opts...), log)

	return &Playground{
		cfg:      cfg,
		service:  api.NewService(client, serviceOpts...),
		endpoint: endpointOpts,
		log:      log,
		store:    store,
	}, nil
}

// seedFixtures loads the seed file if configured, or the built-in examples when the
// store is empty.
func seedFixtures(store fixtures.Store, file string) error {
	if file != "" {
		fx, err := fixtures.LoadFile(file)
		if err != nil {
			return fmt.Errorf("load fixtures: %w", err)
		}
		return fixtures.Seed(store, fx)
	}
	n, err := store.Len()
	if err != nil {
		return fmt.Errorf("count fixtures: %w", err)
	}
	if n > 0 {
		return nil
	}
	return fixtures.Seed(store, DefaultFixtures())
}

// DefaultFixtures answers the two example endpoints.
func DefaultFixtures() []fixtures.Fixture {
	return []fixtures.Fixture{
		{Method: "GET", Path: "/users", Body: `[{"name":"SA"}]`},
		{Method: "POST", Path: "/user", Query: "id=1", Body: `{"name":"SA"}`},
	}
}

// Report is the outcome of one playground run.
type Report struct {
	Users     []api.DetailResponse
	UsersErr  error
	Detail    api.DetailResponse
	DetailErr error
	ElapsedMS int64
}

// Run describes the detail request, then fetches users and the user detail
// concurrently. Fetch failures are logged and reported, not returned.
func (p *Playground) Run(ctx context.Context) (Report, error) {
	if p == nil || p.service == nil {
		return Report{}, fmt.Errorf("playground is not initialized")
	}
	defer p.closeStore()

	body := api.DetailRequestBody{Name: p.cfg.UserName}
	req := api.UserDetailRequest(p.cfg.UserID, body, p.cfg.AccessToken, p.endpoint...)
	if err := req.Err(); err != nil {
		return Report{}, fmt.Errorf("build user detail request: %w", err)
	}
	p.log.InfoObj("user detail request built", "request", map[string]any{
		"url":     req.URL().String(),
		"method":  string(req.Method()),
		"body":    string(req.Body()),
		"headers": req.Headers(),
	})

	start := time.Now()
	usersCh := p.service.ListUsersAsync(ctx)
	detailCh := p.service.UserDetailAsync(ctx, p.cfg.UserID, body, p.cfg.AccessToken)

	var rep Report
	var err error
	rep.Users, rep.UsersErr = fetch.Await(ctx, usersCh)
	rep.Detail, rep.DetailErr = fetch.Await(ctx, detailCh)
	rep.ElapsedMS = time.Since(start).Milliseconds()

	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}

	p.logOutcome("users fetched", "users", rep.Users, rep.UsersErr)
	p.logOutcome("user detail fetched", "detail", rep.Detail, rep.DetailErr)
	p.log.InfoObj("playground completed", "playground_meta", map[string]any{
		"offline":    p.cfg.Offline(),
		"elapsed_ms": rep.ElapsedMS,
	})
	return rep, err
}

func (p *Playground) logOutcome(msg, key string, value any, err error) {
	if err != nil {
		p.log.ErrorObj(msg+" with error", "error", err.Error())
		return
	}
	p.log.InfoObj(msg, key, value)
}

// closeStore safely closes the fixture backend, logging any errors encountered.
func (p *Playground) closeStore() {
	if p == nil || p.store == nil {
		return
	}
	if err := p.store.Close(); err != nil {
		p.log.ErrorObj("fixtures close failed", "error", err)
	}
}
