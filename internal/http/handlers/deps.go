package handlers

import (
	"elyukal/internal/apiclient"
	"elyukal/internal/config"
	"elyukal/internal/domain"
	"elyukal/internal/forms"
	"elyukal/internal/repos"
	"elyukal/internal/services"
	"elyukal/internal/session"
	"elyukal/internal/staging"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
)

type Deps struct {
	Admin    *session.Manager
	Owner    *session.Manager
	Staging  *staging.Store
	Sessions *repos.SessionRepo

	AdminAuth     *AuthHandler
	OwnerAuth     *AuthHandler
	Dashboard     *DashboardHandler
	Products      *ProductHandler
	OwnerProducts *ProductHandler
	Stores        *StoreHandler
	MyStore       *StoreHandler
	Profile       *ProfileHandler
	Apply         *ApplyHandler
	Users         *UserHandler
	Activities    *ActivityHandler
	Applications  *ApplicationHandler
	Staged        *StagingHandler

	// LoginLimit throttles the two login POSTs; nil disables it.
	LoginLimit fiber.Handler
}

func NewDeps(db *sqlx.DB, cfg config.Config, api *apiclient.Client) (*Deps, error) {
	sessions := repos.NewSessionRepo(db)
	store, err := staging.New(repos.NewStagingRepo(db), cfg.StagingMaxBytes, cfg.StagingTTL)
	if err != nil {
		return nil, err
	}
	guard := forms.NewGuard()
	catalog := services.NewCatalogService(api)

	admin := session.NewManager(session.AdminEndpoints, api, sessions)
	owner := session.NewManager(session.StoreOwnerEndpoints, api, sessions)

	return &Deps{
		Admin:     admin,
		Owner:     owner,
		Staging:   store,
		Sessions:  sessions,
		AdminAuth: &AuthHandler{Manager: admin, Secure: cfg.CookieSecure},
		OwnerAuth: &AuthHandler{Manager: owner, Secure: cfg.CookieSecure},
		Dashboard: &DashboardHandler{Dashboard: services.NewDashboardService(api)},
		Products: &ProductHandler{
			API: api, Catalog: catalog, Staging: store, Guard: guard,
			Routes: apiclient.AdminProducts, Base: "/products",
		},
		OwnerProducts: &ProductHandler{
			API: api, Catalog: catalog, Staging: store, Guard: guard,
			Routes: apiclient.OwnerProducts, Base: "/store/products", Owner: true,
		},
		Stores:  &StoreHandler{API: api, Catalog: catalog, Staging: store, Guard: guard},
		MyStore: &StoreHandler{API: api, Catalog: catalog, Staging: store, Guard: guard, Owner: true},
		Profile: &ProfileHandler{API: api, Guard: guard},
		Apply: &ApplyHandler{
			API: api, Staging: store, Guard: guard,
			Secure: cfg.CookieSecure, Done: session.StoreOwnerEndpoints.LoginPage,
		},
		Users:        &UserHandler{API: api, Catalog: catalog, Guard: guard},
		Activities:   &ActivityHandler{Catalog: catalog},
		Applications: &ApplicationHandler{API: api, Catalog: catalog, ApproveStatus: domain.ApplicationStatus(cfg.ApproveStatus)},
		Staged:       &StagingHandler{Staging: store},
	}, nil
}
