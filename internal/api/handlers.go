package api

import (
	"time"

	apperrors "github.com/AlejandraOrtegaJ/AlarMedik-Project/internal/errors"
	"github.com/AlejandraOrtegaJ/AlarMedik-Project/internal/metrics"
	"github.com/AlejandraOrtegaJ/AlarMedik-Project/internal/schedule"
	"github.com/AlejandraOrtegaJ/AlarMedik-Project/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) handleMetrics(c *fiber.Ctx) error {
	return c.JSON(metrics.Default().Snapshot())
}

// ==================== Auth ====================

func (s *Server) handleRegister(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "name, email and password are required"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to hash password"})
	}

	user := &store.User{Name: req.Name, Email: req.Email, PasswordHash: string(hash)}
	if err := s.store.CreateUser(user); err != nil {
		if apperrors.GetCode(err) == "USER_002" {
			return c.Status(409).JSON(fiber.Map{"error": "email already registered"})
		}
		s.logger.Error("failed to create user", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to create user"})
	}

	return c.Status(201).JSON(user)
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}

	user, err := s.store.FindUserByEmail(req.Email)
	if err != nil {
		s.logger.Error("login lookup failed", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "login failed"})
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return c.Status(401).JSON(fiber.Map{"error": "invalid credentials"})
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": user.ID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(s.config.Security.TokenTTL).Unix(),
	})
	tokenString, err := token.SignedString([]byte(s.config.Security.JWTSecret))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to generate token"})
	}

	return c.JSON(fiber.Map{"token": tokenString, "user": user})
}

// ==================== Medications ====================

func (s *Server) handleListMedications(c *fiber.Ctx) error {
	meds, err := s.store.GetMedicationsForUser(userID(c))
	if err != nil {
		s.logger.Error("failed to list medications", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to list medications"})
	}
	return c.JSON(meds)
}

func (s *Server) handleCreateMedication(c *fiber.Ctx) error {
	var req struct {
		Name      string   `json:"name"`
		DoseText  string   `json:"dose_text"`
		Frequency string   `json:"frequency"`
		StartDate *string  `json:"start_date"`
		EndDate   *string  `json:"end_date"`
		Times     []string `json:"times"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}

	med := &store.Medication{
		UserID:    userID(c),
		Name:      req.Name,
		DoseText:  req.DoseText,
		Frequency: req.Frequency,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	for i, t := range req.Times {
		if _, _, err := schedule.ParseTimeOfDay(t); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid dose time: " + t})
		}
		med.Doses = append(med.Doses, store.Dose{Ordinal: i + 1, TimeOfDay: t})
	}

	if err := s.store.CreateMedication(med); err != nil {
		if apperrors.GetCode(err) == "MED_002" {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		s.logger.Error("failed to create medication", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to create medication"})
	}

	// One recurring trigger per dose, same as saving in the original app
	for _, dose := range med.Doses {
		if err := s.dispatcher.ScheduleDose(med.ID, dose.Ordinal, med.Name, dose.TimeOfDay); err != nil {
			s.logger.Warn("failed to schedule dose trigger",
				zap.Int64("medication_id", med.ID),
				zap.Int("ordinal", dose.Ordinal),
				zap.Error(err),
			)
		}
	}

	return c.Status(201).JSON(med)
}

func (s *Server) handleDayView(c *fiber.Ctx) error {
	date := c.Query("date", time.Now().Format(schedule.DateLayout))
	if _, err := schedule.ParseDate(date); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid date"})
	}

	entries, err := s.store.MedicationsForDate(userID(c), date)
	if err != nil {
		s.logger.Error("failed to build day view", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to load day"})
	}
	return c.JSON(entries)
}

func (s *Server) handleDeleteMedication(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid medication id"})
	}

	med, err := s.store.GetMedication(int64(id))
	if err != nil {
		s.logger.Error("failed to load medication", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete medication"})
	}
	if med == nil || med.UserID != userID(c) {
		return c.Status(404).JSON(fiber.Map{"error": "medication not found"})
	}

	s.dispatcher.CancelMedication(med)

	if err := s.store.DeleteMedication(med.ID); err != nil {
		s.logger.Error("failed to delete medication", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete medication"})
	}
	return c.SendStatus(204)
}

// ==================== Dose status ====================

func (s *Server) handleMarkTaken(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid medication id"})
	}
	ordinal, err := c.ParamsInt("ordinal")
	if err != nil || ordinal < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "invalid dose ordinal"})
	}

	med, err := s.store.GetMedication(int64(id))
	if err != nil {
		s.logger.Error("failed to load medication", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to mark dose"})
	}
	if med == nil || med.UserID != userID(c) {
		return c.Status(404).JSON(fiber.Map{"error": "medication not found"})
	}

	date := c.Query("date", time.Now().Format(schedule.DateLayout))
	if _, err := schedule.ParseDate(date); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid date"})
	}

	takenAt := time.Now().Format(schedule.TimeLayout)
	if err := s.store.MarkTaken(med.ID, date, ordinal, takenAt); err != nil {
		metrics.Default().RecordMark(false)
		s.logger.Error("failed to mark dose taken", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{"error": "failed to mark dose"})
	}
	metrics.Default().RecordMark(true)

	return c.JSON(fiber.Map{
		"medication_id": med.ID,
		"date":          date,
		"ordinal":       ordinal,
		"taken":         true,
		"taken_at":      takenAt,
	})
}

// ==================== Adherence ====================

func (s *Server) handleAdherence(c *fiber.Ctx) error {
	date := c.Query("date")
	if date == "" {
		return c.JSON(fiber.Map{"rate": s.calc.OverallRate(userID(c))})
	}

	if _, err := schedule.ParseDate(date); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid date"})
	}
	return c.JSON(fiber.Map{"date": date, "rate": s.calc.RateForDate(userID(c), date)})
}
