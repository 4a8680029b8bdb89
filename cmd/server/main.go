package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/ArmaniKE/clinic-back/internal/config"
	"github.com/ArmaniKE/clinic-back/internal/database"
	"github.com/ArmaniKE/clinic-back/internal/handler"
	"github.com/ArmaniKE/clinic-back/internal/mailer"
	"github.com/ArmaniKE/clinic-back/internal/notify"
	"github.com/ArmaniKE/clinic-back/internal/queue"
	"github.com/ArmaniKE/clinic-back/internal/repository"
	"github.com/ArmaniKE/clinic-back/internal/router"
	"github.com/ArmaniKE/clinic-back/internal/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment")
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is unreachable; caching is skipped

	hub := ws.NewHub()
	go hub.Run()

	smtp := mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	go func() {
		if err := queue.StartEmailConsumer(smtp); err != nil {
			log.Printf("email consumer stopped: %v", err)
		}
	}()

	users := repository.NewUserRepo(db)
	doctors := repository.NewDoctorRepo(db)
	patients := repository.NewPatientRepo(db)
	services := repository.NewServiceRepo(db)
	appts := repository.NewAppointmentRepo(db)
	payments := repository.NewPaymentRepo(db)
	dash := repository.NewDashboardRepo(db)

	notifier := notify.New(hub)

	authH := &handler.AuthHandler{Cfg: &cfg, Users: users, Patients: patients}
	doctorH := &handler.DoctorHandler{Doctors: doctors}
	patientH := &handler.PatientHandler{Patients: patients, Users: users}
	serviceH := &handler.ServiceHandler{Services: services}
	apptH := &handler.AppointmentHandler{Appts: appts, Users: users, Services: services, Notifier: notifier}
	paymentH := &handler.PaymentHandler{Payments: payments}
	dashH := &handler.DashboardHandler{Dash: dash}
	userH := &handler.UserHandler{Users: users}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(echomw.CORS())

	router.RegisterRoutes(e, hub)
	router.RegisterAuth(e, authH)
	router.RegisterDirectory(e, doctorH, patientH, userH, rdb, cfg.JWTSecret)
	router.RegisterServices(e, serviceH, rdb, cfg.JWTSecret)
	router.RegisterAppointments(e, apptH, cfg.JWTSecret)
	router.RegisterBilling(e, paymentH, dashH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
