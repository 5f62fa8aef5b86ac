package handler

import (
	"github.com/revivewell/internal/auth"
	"github.com/revivewell/internal/classifier"
	"github.com/revivewell/internal/config"
	"github.com/revivewell/internal/scraper"
	"github.com/revivewell/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db           *gorm.DB
	tokens       *auth.TokenService
	users        *service.UserService
	profiles     *service.ProfileService
	checkins     *service.CheckinService
	appointments *service.AppointmentService
	messages     *service.MessageService
	dashboard    *service.DashboardService
	insights     service.InsightGenerator
	chat         service.ChatResponder
	events       scraper.ListingFetcher
	meetings     scraper.MeetingFinder
	predictor    classifier.Predictor
}

// Collaborators 为外部依赖；未提供的项按配置构造默认实现，Predictor 为空表示模型不可用
type Collaborators struct {
	Insights  service.InsightGenerator
	Chat      service.ChatResponder
	Events    scraper.ListingFetcher
	Meetings  scraper.MeetingFinder
	Predictor classifier.Predictor
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, cfg config.AppConfig, tokens *auth.TokenService, collab Collaborators) *API {
	users := service.NewUserService(gdb)
	checkins := service.NewCheckinService(gdb, cfg.ClinicianCheckinScope)
	appointments := service.NewAppointmentService(gdb)

	if collab.Insights == nil || collab.Chat == nil {
		ai := service.NewAIService(service.LLMConfig{
			BaseURL: cfg.LLMBaseURL,
			Model:   cfg.LLMModel,
			APIKey:  cfg.LLMAPIKey,
		})
		if collab.Insights == nil {
			collab.Insights = ai
		}
		if collab.Chat == nil {
			collab.Chat = ai
		}
	}
	if collab.Events == nil {
		collab.Events = scraper.NewEventScraper()
	}
	if collab.Meetings == nil {
		collab.Meetings = scraper.NewMeetingLocator(scraper.NewNominatimGeocoder(cfg.GeocoderBaseURL), cfg.MeetingsBaseURL)
	}

	return &API{
		db:           gdb,
		tokens:       tokens,
		users:        users,
		profiles:     service.NewProfileService(gdb, users),
		checkins:     checkins,
		appointments: appointments,
		messages:     service.NewMessageService(gdb),
		dashboard:    service.NewDashboardService(gdb, users, checkins, appointments),
		insights:     collab.Insights,
		chat:         collab.Chat,
		events:       collab.Events,
		meetings:     collab.Meetings,
		predictor:    collab.Predictor,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}
