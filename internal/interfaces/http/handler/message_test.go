package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	messagingapp "github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/application/messaging"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/messaging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMessageAPI struct {
	mock.Mock
}

func (m *MockMessageAPI) SendEmail(ctx context.Context, tenantID uuid.UUID, in messagingapp.EmailInput) (*messaging.MessageLog, error) {
	args := m.Called(ctx, tenantID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*messaging.MessageLog), args.Error(1)
}

func (m *MockMessageAPI) SendWhatsApp(ctx context.Context, tenantID uuid.UUID, in messagingapp.WhatsAppInput) (*messaging.MessageLog, error) {
	args := m.Called(ctx, tenantID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*messaging.MessageLog), args.Error(1)
}

func (m *MockMessageAPI) GetMessage(ctx context.Context, tenantID, id uuid.UUID) (*messaging.MessageLog, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*messaging.MessageLog), args.Error(1)
}

type MockTrackingAPI struct {
	mock.Mock
}

func (m *MockTrackingAPI) RecordOpen(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTrackingAPI) RecordClick(ctx context.Context, id uuid.UUID, target string) error {
	return m.Called(ctx, id, target).Error(0)
}

func (m *MockTrackingAPI) VerifyClick(id uuid.UUID, target, sig string) bool {
	return m.Called(id, target, sig).Bool(0)
}

func setupMessageRouter(svc *MockMessageAPI) *gin.Engine {
	h := NewMessageHandler(svc)
	return newTestRouter(func(r *gin.Engine) {
		r.POST("/messages/email", h.SendEmail)
		r.POST("/messages/whatsapp", h.SendWhatsApp)
		r.GET("/messages/:id", h.GetMessage)
	})
}

func sentMessage(channel messaging.Channel, to string) *messaging.MessageLog {
	msg, _ := messaging.NewMessageLog(testTenantID, channel, to, "", "Pedido confirmado")
	msg.MarkSent("prov-1")
	return msg
}

func TestMessageHandler_SendEmail(t *testing.T) {
	t.Run("plain body", func(t *testing.T) {
		svc := new(MockMessageAPI)
		svc.On("SendEmail", mock.Anything, testTenantID, messagingapp.EmailInput{
			To: "pastor@igreja.org", Subject: "Olá", HTML: "<p>Oi</p>",
		}).Return(sentMessage(messaging.ChannelEmail, "pastor@igreja.org"), nil)

		w := performRequest(setupMessageRouter(svc), http.MethodPost, "/messages/email", map[string]string{
			"to": "pastor@igreja.org", "subject": "Olá", "html": "<p>Oi</p>",
		})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var got MessageResponse
		decodeData(t, w, &got)
		assert.Equal(t, messaging.StatusSent, got.Status)
		assert.Equal(t, "prov-1", got.ProviderID)
	})

	t.Run("template data is decoded to the template type", func(t *testing.T) {
		svc := new(MockMessageAPI)
		svc.On("SendEmail", mock.Anything, testTenantID, mock.MatchedBy(func(in messagingapp.EmailInput) bool {
			data, ok := in.Data.(*messaging.PayoutPaid)
			return ok && in.Template == messaging.TemplatePayoutPaid && data.Amount.Equal(decimal.RequireFromString("1234.56"))
		})).Return(sentMessage(messaging.ChannelEmail, "autor@editora.com"), nil)

		w := performRequest(setupMessageRouter(svc), http.MethodPost, "/messages/email", map[string]any{
			"to":       "autor@editora.com",
			"template": "payout_paid",
			"data":     map[string]any{"amount": "1234.56"},
		})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("unknown template", func(t *testing.T) {
		w := performRequest(setupMessageRouter(new(MockMessageAPI)), http.MethodPost, "/messages/email", map[string]any{
			"to": "a@b.com", "template": "newsletter",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid address", func(t *testing.T) {
		w := performRequest(setupMessageRouter(new(MockMessageAPI)), http.MethodPost, "/messages/email", map[string]any{
			"to": "not-an-email", "subject": "x", "text": "y",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("no sender configured", func(t *testing.T) {
		svc := new(MockMessageAPI)
		svc.On("SendEmail", mock.Anything, testTenantID, mock.Anything).Return(nil, messaging.ErrSenderUnavailable)

		w := performRequest(setupMessageRouter(svc), http.MethodPost, "/messages/email", map[string]any{
			"to": "a@b.com", "subject": "x", "text": "y",
		})

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestMessageHandler_SendWhatsApp(t *testing.T) {
	svc := new(MockMessageAPI)
	svc.On("SendWhatsApp", mock.Anything, testTenantID, messagingapp.WhatsAppInput{
		To: "5511999990000", Template: "pedido_enviado", LanguageCode: "pt_BR", Params: []string{"#1001"},
	}).Return(sentMessage(messaging.ChannelWhatsApp, "5511999990000"), nil)
	r := setupMessageRouter(svc)

	w := performRequest(r, http.MethodPost, "/messages/whatsapp", map[string]any{
		"to": "5511999990000", "template": "pedido_enviado", "language_code": "pt_BR", "params": []string{"#1001"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = performRequest(r, http.MethodPost, "/messages/whatsapp", map[string]any{"to": "5511999990000"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(r, http.MethodPost, "/messages/whatsapp", map[string]any{"to": "ramal 2040", "text": "oi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"to"`)
}

func TestMessageHandler_GetMessage(t *testing.T) {
	svc := new(MockMessageAPI)
	msg := sentMessage(messaging.ChannelEmail, "a@b.com")
	svc.On("GetMessage", mock.Anything, testTenantID, msg.ID).Return(msg, nil)
	missing := uuid.New()
	svc.On("GetMessage", mock.Anything, testTenantID, missing).Return(nil, messaging.ErrMessageNotFound)
	r := setupMessageRouter(svc)

	w := performRequest(r, http.MethodGet, "/messages/"+msg.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = performRequest(r, http.MethodGet, "/messages/"+missing.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func setupTrackingRouter(tr *MockTrackingAPI) *gin.Engine {
	h := NewTrackingHandler(tr)
	r := gin.New()
	r.GET("/t/o/:file", h.Open)
	r.GET("/t/c/:id", h.Click)
	return r
}

func TestTrackingHandler_Open(t *testing.T) {
	tr := new(MockTrackingAPI)
	id := uuid.New()
	tr.On("RecordOpen", mock.Anything, id).Return(nil)
	r := setupTrackingRouter(tr)

	w := performRequest(r, http.MethodGet, "/t/o/"+id.String()+".gif", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/gif", w.Header().Get("Content-Type"))
	assert.Equal(t, messagingapp.PixelGIF, w.Body.Bytes())
	tr.AssertExpectations(t)
}

func TestTrackingHandler_OpenAlwaysServesPixel(t *testing.T) {
	tr := new(MockTrackingAPI)
	id := uuid.New()
	tr.On("RecordOpen", mock.Anything, id).Return(messaging.ErrMessageNotFound)
	r := setupTrackingRouter(tr)

	w := performRequest(r, http.MethodGet, "/t/o/"+id.String()+".gif", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(r, http.MethodGet, "/t/o/garbage.gif", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, messagingapp.PixelGIF, w.Body.Bytes())
}

func TestTrackingHandler_Click(t *testing.T) {
	id := uuid.New()
	const goodSig = "c2lnbmVk"

	tests := []struct {
		name       string
		id         string
		target     string
		sig        string
		recordErr  error
		wantStatus int
	}{
		{"https target", id.String(), "https://ebd.example.com/pedido/1", goodSig, nil, http.StatusFound},
		{"http target", id.String(), "http://ebd.example.com/", goodSig, nil, http.StatusFound},
		{"deleted message still redirects", id.String(), "https://ebd.example.com/", goodSig, messaging.ErrMessageNotFound, http.StatusFound},
		{"unsigned link", id.String(), "https://evil.example/login", "", nil, http.StatusBadRequest},
		{"signature for another target", id.String(), "https://evil.example/login", "Zm9yZ2Vk", nil, http.StatusBadRequest},
		{"malformed id", "not-a-uuid", "https://ebd.example.com/", goodSig, nil, http.StatusBadRequest},
		{"javascript scheme", id.String(), "javascript:alert(1)", goodSig, nil, http.StatusBadRequest},
		{"relative", id.String(), "/admin", goodSig, nil, http.StatusBadRequest},
		{"missing", id.String(), "", goodSig, nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := new(MockTrackingAPI)
			tr.On("VerifyClick", id, tt.target, goodSig).Return(true)
			tr.On("VerifyClick", mock.Anything, mock.Anything, mock.Anything).Return(false)
			tr.On("RecordClick", mock.Anything, id, tt.target).Return(tt.recordErr)

			req := "/t/c/" + tt.id + "?u=" + url.QueryEscape(tt.target) + "&s=" + url.QueryEscape(tt.sig)
			w := performRequest(setupTrackingRouter(tr), http.MethodGet, req, nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusFound {
				assert.Equal(t, tt.target, w.Header().Get("Location"))
				tr.AssertCalled(t, "RecordClick", mock.Anything, id, tt.target)
			} else {
				assert.Empty(t, w.Header().Get("Location"))
				tr.AssertNotCalled(t, "RecordClick", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

// issuedLinks verifies with a real Tracker and records clicks in memory
type issuedLinks struct {
	*messagingapp.Tracker
	clicks []string
}

func (l *issuedLinks) RecordOpen(context.Context, uuid.UUID) error { return nil }

func (l *issuedLinks) RecordClick(_ context.Context, _ uuid.UUID, target string) error {
	l.clicks = append(l.clicks, target)
	return nil
}

func TestTrackingHandler_ClickFollowsIssuedLinks(t *testing.T) {
	links := &issuedLinks{Tracker: messagingapp.NewTracker("https://ebd.example.com", "a-signing-key-of-at-least-32-chars!")}
	id := uuid.New()
	target := "https://loja.example/revistas?x=1&y=2"

	link, err := url.Parse(links.ClickURL(id, target))
	require.NoError(t, err)

	h := NewTrackingHandler(links)
	r := gin.New()
	r.GET("/t/c/:id", h.Click)

	w := performRequest(r, http.MethodGet, link.RequestURI(), nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, target, w.Header().Get("Location"))

	q := link.Query()
	q.Set("u", "https://evil.example/")
	w = performRequest(r, http.MethodGet, link.Path+"?"+q.Encode(), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(r, http.MethodGet, "/t/c/"+uuid.NewString()+"?"+link.RawQuery, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, []string{target}, links.clicks)
}

func TestTrackingHandler_ClickRecordFailureIsIgnored(t *testing.T) {
	tr := new(MockTrackingAPI)
	tr.On("VerifyClick", mock.Anything, mock.Anything, mock.Anything).Return(true)
	tr.On("RecordClick", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("db down"))

	w := performRequest(setupTrackingRouter(tr), http.MethodGet, "/t/c/"+uuid.NewString()+"?u=https%3A%2F%2Fexample.com&s=x", nil)

	assert.Equal(t, http.StatusFound, w.Code)
}
