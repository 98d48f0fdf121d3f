package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"taskManager/internal/auth"
	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"
	"taskManager/internal/service"

	"go.uber.org/zap"
)

type AuthHandler struct {
	AuthService AuthService
}

func NewAuthHandler(authService AuthService) AuthHandler {
	return AuthHandler{
		AuthService: authService,
	}
}

func (s *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	if fieldErrors := validateStruct(request); fieldErrors != nil {
		logger.Warn("HTTP: Ошибка валидации",
			zap.Any("fields", fieldErrors),
			zap.String("client_ip", r.RemoteAddr))
		responseWithJSON(w, http.StatusUnprocessableEntity,
			toPayload("error", service.CodeValidation),
			toPayload("errors", fieldErrors))
		return
	}

	registered, err := s.AuthService.Register(r.Context(), request.Name, request.Email, request.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			responseWithJSON(w, http.StatusUnprocessableEntity,
				toPayload("error", service.CodeValidation),
				toPayload("errors", map[string]string{"email": "уже занят"}))
			return
		}
		logger.Error("HTTP: Ошибка Auth", err, zap.String("operation", "register"))
		responseWithError(w, http.StatusInternalServerError, "внутренняя ошибка")
		return
	}

	logger.Info("HTTP_OUT: Пользователь зарегистрирован",
		zap.String("user_id", registered.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, toPayload("message", "User registered successfully"))
}

func (s *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	if fieldErrors := validateStruct(request); fieldErrors != nil {
		responseWithJSON(w, http.StatusUnprocessableEntity,
			toPayload("error", service.CodeValidation),
			toPayload("errors", fieldErrors))
		return
	}

	token, err := s.AuthService.Login(r.Context(), request.Email, request.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			logger.Warn("HTTP: Неудачный вход",
				zap.String("email", request.Email),
				zap.String("client_ip", r.RemoteAddr))
			responseWithJSON(w, http.StatusUnauthorized,
				toPayload("error", service.CodeUnauthorized),
				toPayload("message", "неверный email или пароль"))
			return
		}
		logger.Error("HTTP: Ошибка Auth", err, zap.String("operation", "login"))
		responseWithError(w, http.StatusInternalServerError, "внутренняя ошибка")
		return
	}

	logger.Info("HTTP_OUT: Вход выполнен",
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("token", token))
}

func (s *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	principal, ok := principalFrom(w, r)
	if !ok {
		return
	}

	found, err := s.AuthService.CurrentUser(r.Context(), principal)
	if err != nil {
		logger.Error("HTTP: Ошибка Auth", err, zap.String("operation", "current_user"))
		responseWithError(w, http.StatusInternalServerError, "внутренняя ошибка")
		return
	}

	responseWithBody(w, http.StatusOK, dto.FromUser(found))
}
