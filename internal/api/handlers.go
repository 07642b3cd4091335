package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/googleapis/gax-go/v2/apierror"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"

	"github.com/pjf-digital/consultai/internal/core"
	"github.com/pjf-digital/consultai/internal/store"
)

// ChatService is the message-answering surface the handlers depend on.
type ChatService interface {
	Reply(ctx context.Context, message string) (string, error)
	PostMessage(ctx context.Context, text string) (store.Message, error)
}

// NewsProvider serves the cached health news list.
type NewsProvider interface {
	Articles(ctx context.Context) ([]core.Article, error)
}

type APIHandler struct {
	chatService ChatService
	news        NewsProvider
	convStore   *store.ConversationStore
	profiles    *store.ProfileStore
	logger      *zap.Logger
}

func NewAPIHandler(cs ChatService, news NewsProvider, convStore *store.ConversationStore, profiles *store.ProfileStore, logger *zap.Logger) *APIHandler {
	return &APIHandler{
		chatService: cs,
		news:        news,
		convStore:   convStore,
		profiles:    profiles,
		logger:      logger,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

// ChatHandler is the stateless proxy: one message in, one reply out.
func (h *APIHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Mensagem inválida")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "Nenhuma mensagem fornecida")
		return
	}

	reply, err := h.chatService.Reply(r.Context(), req.Message)
	if err != nil {
		h.writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse{Response: reply})
}

// writeChatError maps provider and guardrail failures to HTTP statuses:
// guardrail rejections are client-visible 422s, configuration errors are
// explicit 500s, provider errors keep the upstream status where the
// provider reported one.
func (h *APIHandler) writeChatError(w http.ResponseWriter, err error) {
	var guardrailErr *core.GuardrailError
	if errors.As(err, &guardrailErr) {
		writeError(w, http.StatusUnprocessableEntity, guardrailErr.Message)
		return
	}
	if errors.Is(err, core.ErrMissingAPIKey) {
		writeError(w, http.StatusInternalServerError, "Chave da API Gemini não configurada")
		return
	}
	if errors.Is(err, core.ErrEmptyReply) {
		writeError(w, http.StatusInternalServerError, "Resposta vazia do modelo")
		return
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) && gErr.Code >= http.StatusBadRequest {
		h.logger.Error("gemini upstream error", zap.Int("status", gErr.Code), zap.Error(err))
		writeError(w, gErr.Code, gErr.Message)
		return
	}
	// The genai client speaks gRPC by default, so most provider errors
	// arrive as an apierror.APIError wrapping a gRPC status rather than
	// a googleapi.Error.
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		st := apiErr.GRPCStatus()
		h.logger.Error("gemini upstream error",
			zap.String("grpc_code", st.Code().String()),
			zap.Error(err),
		)
		writeError(w, httpStatusFromGRPC(st.Code()), st.Message())
		return
	}

	h.logger.Error("chat request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "Erro ao se comunicar com a IA. Tente novamente mais tarde.")
}

func httpStatusFromGRPC(code codes.Code) int {
	switch code {
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *APIHandler) CreateConversationHandler(w http.ResponseWriter, r *http.Request) {
	conv, err := h.convStore.Create()
	if err != nil {
		h.logger.Error("failed to create conversation", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Erro ao criar conversa")
		return
	}
	writeJSON(w, http.StatusCreated, conv)
}

func (h *APIHandler) ListConversationsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.convStore.List())
}

func (h *APIHandler) CurrentConversationHandler(w http.ResponseWriter, r *http.Request) {
	conv, ok := h.convStore.Current()
	if !ok {
		writeError(w, http.StatusNotFound, "Nenhuma conversa selecionada")
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

// SelectConversationHandler sets the current conversation. A miss is a
// silent no-op, so the response is 204 either way.
func (h *APIHandler) SelectConversationHandler(w http.ResponseWriter, r *http.Request) {
	h.convStore.Select(chi.URLParam(r, "conversationID"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) DeleteConversationHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.convStore.Delete(chi.URLParam(r, "conversationID")); err != nil {
		h.logger.Error("failed to delete conversation", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Erro ao excluir conversa")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) ClearCurrentConversationHandler(w http.ResponseWriter, r *http.Request) {
	h.convStore.ClearCurrent()
	w.WriteHeader(http.StatusNoContent)
}

type PostMessageRequest struct {
	Text string `json:"text"`
}

// PostMessageHandler appends a user message to the current conversation
// and returns the stored bot reply.
func (h *APIHandler) PostMessageHandler(w http.ResponseWriter, r *http.Request) {
	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Mensagem inválida")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "Nenhuma mensagem fornecida")
		return
	}

	botMsg, err := h.chatService.PostMessage(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, store.ErrNoCurrentConversation) {
			writeError(w, http.StatusConflict, "Nenhuma conversa selecionada")
			return
		}
		h.writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, botMsg)
}

type HealthDataResponse struct {
	Regiao      string           `json:"regiao"`
	Atualizacao string           `json:"atualizacao"`
	Indicadores []core.Indicator `json:"indicadores"`
}

func (h *APIHandler) HealthDataHandler(w http.ResponseWriter, r *http.Request) {
	regiao := r.URL.Query().Get("regiao")
	if regiao == "" {
		regiao = "mg"
	}

	name, indicators := core.IndicatorsByRegion(regiao)
	writeJSON(w, http.StatusOK, HealthDataResponse{
		Regiao:      name,
		Atualizacao: time.Now().UTC().Format(time.RFC3339),
		Indicadores: indicators,
	})
}

type NewsResponse struct {
	Articles []core.Article `json:"articles"`
}

func (h *APIHandler) NewsHandler(w http.ResponseWriter, r *http.Request) {
	articles, err := h.news.Articles(r.Context())
	if err != nil {
		if errors.Is(err, core.ErrMissingAPIKey) {
			writeError(w, http.StatusInternalServerError, "API key não configurada")
			return
		}
		h.logger.Error("failed to load news", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Erro ao buscar notícias")
		return
	}
	writeJSON(w, http.StatusOK, NewsResponse{Articles: articles})
}

func (h *APIHandler) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	profile, ok, err := h.profiles.Get()
	if err != nil {
		h.logger.Error("failed to load profile", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Erro ao carregar usuário")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Nenhum usuário cadastrado")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

type PutProfileRequest struct {
	Nome  string `json:"nome"`
	Email string `json:"email"`
}

func (h *APIHandler) PutProfileHandler(w http.ResponseWriter, r *http.Request) {
	var req PutProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Dados inválidos")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "E-mail é obrigatório")
		return
	}

	existing, ok, err := h.profiles.Get()
	if err != nil {
		h.logger.Error("failed to load profile", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Erro ao salvar usuário")
		return
	}

	profile := store.Profile{Nome: req.Nome, Email: req.Email}
	if ok {
		profile.ID = existing.ID
	} else {
		profile.ID = uuid.NewString()
	}

	if err := h.profiles.Put(profile); err != nil {
		h.logger.Error("failed to save profile", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Erro ao salvar usuário")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// DeleteProfileHandler has logout semantics: the record and the whole
// conversation collection go together.
func (h *APIHandler) DeleteProfileHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.profiles.Delete(); err != nil {
		h.logger.Error("failed to delete profile", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Erro ao remover usuário")
		return
	}
	if err := h.convStore.Reset(); err != nil {
		h.logger.Error("failed to reset conversations", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Erro ao remover conversas")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
