package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/revivewell/internal/config"
	"github.com/revivewell/internal/db"
	"github.com/revivewell/internal/logging"
	"github.com/revivewell/internal/service"
	"gorm.io/gorm"
)

// 演示数据生成器，账号密码取自 DEMO_PASSWORD
func main() {
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	password := strings.TrimSpace(os.Getenv("DEMO_PASSWORD"))
	if password == "" {
		logging.Error().Msg("DEMO_PASSWORD is required")
		os.Exit(1)
	}

	if err := db.Init(cfg.DatabasePath); err != nil {
		logging.Error().Err(err).Msg("数据库初始化失败")
		os.Exit(1)
	}

	summary, err := seedDemoData(context.Background(), db.DB, password, time.Now())
	if err != nil {
		logging.Error().Err(err).Msg("生成演示数据失败")
		os.Exit(1)
	}
	if summary.skipped {
		fmt.Println("用户已存在，跳过生成")
		return
	}

	fmt.Println("演示数据生成完成！")
	for _, account := range summary.accounts {
		fmt.Printf("%s: %s\n", account.UserType, account.Email)
	}
	fmt.Printf("打卡: %d 条, 预约: %d 条, 消息: %d 条\n", summary.checkins, summary.appointments, summary.messages)
}

type demoSummary struct {
	skipped      bool
	accounts     []db.User
	checkins     int
	appointments int
	messages     int
}

type demoAccount struct {
	name  string
	email string
	role  string
}

var demoAccounts = []demoAccount{
	{name: "Priya Raman", email: "priya@demo.revivewell.local", role: db.RolePatient},
	{name: "Arjun Das", email: "arjun@demo.revivewell.local", role: db.RolePatient},
	{name: "Meera Iyer", email: "meera@demo.revivewell.local", role: db.RoleCounselor},
	{name: "Dr. Kavin Rao", email: "kavin@demo.revivewell.local", role: db.RoleDoctor},
}

// seedDemoData 在空库中写入演示账号、打卡、预约与消息；已有用户时不做任何修改
func seedDemoData(ctx context.Context, gdb *gorm.DB, password string, now time.Time) (*demoSummary, error) {
	var count int64
	if err := gdb.WithContext(ctx).Model(&db.User{}).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return &demoSummary{skipped: true}, nil
	}

	users := service.NewUserService(gdb)
	checkins := service.NewCheckinService(gdb, config.CheckinScopeAll)
	appointments := service.NewAppointmentService(gdb)
	messages := service.NewMessageService(gdb)
	profiles := service.NewProfileService(gdb, users)

	summary := &demoSummary{}
	byRole := map[string][]db.User{}
	for _, account := range demoAccounts {
		user, err := users.CreateUser(ctx, service.NewUserInput{
			Name:     account.name,
			Email:    account.email,
			Password: password,
			Role:     account.role,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", account.email, err)
		}
		summary.accounts = append(summary.accounts, *user)
		byRole[account.role] = append(byRole[account.role], *user)
	}

	counselor := byRole[db.RoleCounselor][0]
	doctor := byRole[db.RoleDoctor][0]

	for i, patient := range byRole[db.RolePatient] {
		if _, err := profiles.SubmitIntake(ctx, patient, service.IntakeForm{
			PrimarySubstance: "alcohol",
			UsageDuration:    fmt.Sprintf("%d years", 3+i),
			PrimaryGoal:      "stay sober",
			SupportSystem:    "family",
		}); err != nil {
			return nil, fmt.Errorf("intake for %s: %w", patient.Email, err)
		}

		// 最近一周每天一条打卡，情绪逐日好转
		for day := 6; day >= 0; day-- {
			at := now.AddDate(0, 0, -day)
			checkins.SetClock(func() time.Time { return at })
			mood := 4 + (6-day)/2 + i
			cravings := 7 - (6-day)/2
			if _, err := checkins.Create(ctx, patient, service.CheckinInput{
				Mood:          &mood,
				Cravings:      &cravings,
				Challenges:    "evening cravings",
				Goals:         "walk after dinner",
				NeedCounselor: day == 6,
			}); err != nil {
				return nil, fmt.Errorf("checkin for %s: %w", patient.Email, err)
			}
			summary.checkins++
		}

		for j, provider := range []db.User{counselor, doctor} {
			if _, err := appointments.Create(ctx, provider, service.AppointmentInput{
				PatientID:  patient.ID,
				ProviderID: provider.ID,
				Date:       now.AddDate(0, 0, 2+j*5+i).Format("2006-01-02"),
				Time:       fmt.Sprintf("%02d:00", 10+j),
				Type:       "therapy",
			}); err != nil {
				return nil, fmt.Errorf("appointment for %s: %w", patient.Email, err)
			}
			summary.appointments++
		}

		if _, err := messages.Send(ctx, patient, service.SendInput{
			Content:    "Looking forward to our next session.",
			ReceiverID: counselor.ID,
		}); err != nil {
			return nil, fmt.Errorf("message from %s: %w", patient.Email, err)
		}
		summary.messages++
	}

	return summary, nil
}
