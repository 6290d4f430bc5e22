package phoneauth

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/takeandeat/internal/app/features/errors"
	"github.com/dalemusser/takeandeat/internal/app/store/audit"
	"github.com/dalemusser/takeandeat/internal/app/store/verifications"
	userstore "github.com/dalemusser/takeandeat/internal/app/store/users"
	"github.com/dalemusser/takeandeat/internal/app/system/apperr"
	"github.com/dalemusser/takeandeat/internal/app/system/auditlog"
	"github.com/dalemusser/takeandeat/internal/app/system/auth"
	"github.com/dalemusser/takeandeat/internal/app/system/ratelimit"
	"github.com/dalemusser/takeandeat/internal/domain/models"
	"github.com/dalemusser/takeandeat/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeProfiles struct {
	byPhone map[string]*models.User
	created int
}

func (f *fakeProfiles) GetByPhone(_ context.Context, e164 string) (*models.User, error) {
	if u, ok := f.byPhone[e164]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, userstore.ErrNotFound
}

func (f *fakeProfiles) Create(_ context.Context, u models.User) (models.User, error) {
	if _, ok := f.byPhone[u.PhoneE164]; ok {
		return models.User{}, userstore.ErrDuplicatePhone
	}
	u.ID = primitive.NewObjectID()
	f.byPhone[u.PhoneE164] = &u
	f.created++
	return u, nil
}

func (f *fakeProfiles) MarkPhoneVerified(_ context.Context, id primitive.ObjectID) error {
	for _, u := range f.byPhone {
		if u.ID == id {
			u.PhoneVerified = true
			return nil
		}
	}
	return userstore.ErrNotFound
}

type fakeCodes struct {
	codes    map[primitive.ObjectID]string
	resends  int
	verifies int
}

func (f *fakeCodes) Create(_ context.Context, uid primitive.ObjectID, ch verifications.Channel, _ string, isResend bool) (*verifications.CreateResult, error) {
	if ch != verifications.ChannelSMS {
		panic("unexpected channel " + ch)
	}
	if isResend {
		f.resends++
		if f.resends > verifications.MaxResends {
			return nil, verifications.ErrTooManyResends
		}
	}
	f.codes[uid] = "123456"
	return &verifications.CreateResult{Code: "123456", ResendCount: f.resends}, nil
}

func (f *fakeCodes) VerifyCode(_ context.Context, uid primitive.ObjectID, code string) (*verifications.Verification, error) {
	f.verifies++
	want, ok := f.codes[uid]
	if !ok {
		return nil, verifications.ErrNotFound
	}
	if code != want {
		return nil, verifications.ErrInvalidCode
	}
	delete(f.codes, uid)
	return &verifications.Verification{UserID: uid, Channel: verifications.ChannelSMS}, nil
}

type sentSMS struct{ to, body string }

type fakeSMS struct{ sent []sentSMS }

func (f *fakeSMS) Send(_ context.Context, to, body string) (string, error) {
	f.sent = append(f.sent, sentSMS{to, body})
	return "msg-1", nil
}

type fixture struct {
	h        *Handler
	profiles *fakeProfiles
	codes    *fakeCodes
	sms      *fakeSMS
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test-session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	f := &fixture{
		profiles: &fakeProfiles{byPhone: map[string]*models.User{}},
		codes:    &fakeCodes{codes: map[primitive.ObjectID]string{}},
		sms:      &fakeSMS{},
	}
	f.h = NewHandler(f.profiles, f.codes, f.sms, sm, nil, uierrors.NewErrorLogger(zap.NewNop()), nil, zap.NewNop())
	return f
}

func TestSend_CreatesIdentityAndTextsCode(t *testing.T) {
	f := newFixture(t)
	req := testutil.NewFormRequest("/phone-auth/send", url.Values{"phone": {"+33 6 12 34 56 78"}})
	testutil.Serve(f.h.HandleSend, req)

	u, ok := f.profiles.byPhone["+33612345678"]
	if !ok {
		t.Fatal("phone identity was not created")
	}
	if u.AuthMethod != "phone" || u.PhoneVerified {
		t.Errorf("created identity = %+v", u)
	}
	if len(f.sms.sent) != 1 || f.sms.sent[0].to != "+33612345678" {
		t.Fatalf("sent = %+v", f.sms.sent)
	}
	if !strings.Contains(f.sms.sent[0].body, "123456") {
		t.Errorf("sms body %q lacks the code", f.sms.sent[0].body)
	}

	// A second send reuses the identity.
	testutil.Serve(f.h.HandleSend, testutil.NewFormRequest("/phone-auth/send", url.Values{"phone": {"+33612345678"}}))
	if f.profiles.created != 1 {
		t.Errorf("created = %d, want 1", f.profiles.created)
	}
}

func TestSend_InvalidPhone(t *testing.T) {
	f := newFixture(t)
	testutil.Serve(f.h.HandleSend, testutil.NewFormRequest("/phone-auth/send", url.Values{"phone": {"12"}}))

	if f.profiles.created != 0 || len(f.sms.sent) != 0 {
		t.Error("an invalid number must not create an identity or send a text")
	}
}

func TestSend_TooManyResends(t *testing.T) {
	f := newFixture(t)
	form := url.Values{"phone": {"+447911123456"}, "resend": {"1"}}
	for i := 0; i < verifications.MaxResends+1; i++ {
		testutil.Serve(f.h.HandleSend, testutil.NewFormRequest("/phone-auth/send", form))
	}
	if len(f.sms.sent) != verifications.MaxResends {
		t.Errorf("sent %d texts, want %d", len(f.sms.sent), verifications.MaxResends)
	}
}

func TestVerify_SignsIn(t *testing.T) {
	f := newFixture(t)
	testutil.Serve(f.h.HandleSend, testutil.NewFormRequest("/phone-auth/send", url.Values{"phone": {"+447911123456"}}))

	req := testutil.NewFormRequest("/phone-auth/verify", url.Values{
		"phone":  {"+447911123456"},
		"code":   {"123456"},
		"return": {"/give-food"},
	})
	rec := testutil.Serve(f.h.HandleVerify, req)

	rec.AssertRedirect(t, "/give-food")
	if !f.profiles.byPhone["+447911123456"].PhoneVerified {
		t.Error("phone was not marked verified")
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("expected a session cookie")
	}
}

func TestVerify_Failures(t *testing.T) {
	f := newFixture(t)
	testutil.Serve(f.h.HandleSend, testutil.NewFormRequest("/phone-auth/send", url.Values{"phone": {"+447911123456"}}))

	tests := []struct {
		name string
		form url.Values
	}{
		{"missing code", url.Values{"phone": {"+447911123456"}}},
		{"wrong code", url.Values{"phone": {"+447911123456"}, "code": {"000000"}}},
		{"unknown phone", url.Values{"phone": {"+14155552671"}, "code": {"123456"}}},
		{"bad phone", url.Values{"phone": {"abc"}, "code": {"123456"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.Serve(f.h.HandleVerify, testutil.NewFormRequest("/phone-auth/verify", tt.form))
			if rec.Header().Get("Location") != "" {
				t.Errorf("unexpected redirect to %q", rec.Header().Get("Location"))
			}
		})
	}
	if f.profiles.byPhone["+447911123456"].PhoneVerified {
		t.Error("phone verified without a correct code")
	}
}

func TestVerify_UnsafeReturnFallsBackToHome(t *testing.T) {
	f := newFixture(t)
	testutil.Serve(f.h.HandleSend, testutil.NewFormRequest("/phone-auth/send", url.Values{"phone": {"+447911123456"}}))

	rec := testutil.Serve(f.h.HandleVerify, testutil.NewFormRequest("/phone-auth/verify", url.Values{
		"phone":  {"+447911123456"},
		"code":   {"123456"},
		"return": {"https://evil.example/"},
	}))
	rec.AssertRedirect(t, "/")
}

type denyLimiter struct{ accounts []string }

func (d *denyLimiter) Check(_ *http.Request, account string) bool {
	d.accounts = append(d.accounts, account)
	return false
}

type auditSink struct{ events []audit.Event }

func (a *auditSink) Log(_ context.Context, e audit.Event) error {
	a.events = append(a.events, e)
	return nil
}

func TestVerify_ThrottledClientIsRefused(t *testing.T) {
	f := newFixture(t)
	testutil.Serve(f.h.HandleSend, testutil.NewFormRequest("/phone-auth/send", url.Values{"phone": {"+447911123456"}}))

	lim := &denyLimiter{}
	sink := &auditSink{}
	f.h.Limiter = lim
	f.h.Audit = auditlog.New(sink, zap.NewNop(), auditlog.ModeDB)

	rec := testutil.Serve(f.h.HandleVerify, testutil.NewFormRequest("/phone-auth/verify", url.Values{
		"phone": {"+447911123456"},
		"code":  {"123456"},
	}))

	if rec.Header().Get("Location") != "" {
		t.Errorf("throttled verify redirected to %q", rec.Header().Get("Location"))
	}
	if f.codes.verifies != 0 {
		t.Errorf("VerifyCode called %d times while throttled", f.codes.verifies)
	}
	if len(lim.accounts) != 1 || lim.accounts[0] != "verify:+447911123456" {
		t.Errorf("limiter keys = %v", lim.accounts)
	}
	if len(sink.events) != 1 || sink.events[0].FailureReason != "too-many-requests" {
		t.Fatalf("audit events = %+v", sink.events)
	}
	if got := apperr.AuthMessage(apperr.CodeTooManyRequests); got != "Too many failed attempts. Please try again later." {
		t.Errorf("message = %q", got)
	}
}

func TestVerify_GuessesCappedPerNumber(t *testing.T) {
	f := newFixture(t)
	lim := ratelimit.NewLoginLimiterWithConfig(100, time.Minute, 5, time.Minute)
	defer lim.Stop()
	f.h.Limiter = lim

	// The send draws from its own budget.
	testutil.Serve(f.h.HandleSend, testutil.NewFormRequest("/phone-auth/send", url.Values{"phone": {"+447911123456"}}))

	form := url.Values{"phone": {"+447911123456"}, "code": {"000000"}}
	for i := 0; i < 8; i++ {
		testutil.Serve(f.h.HandleVerify, testutil.NewFormRequest("/phone-auth/verify", form))
	}
	if f.codes.verifies != 5 {
		t.Errorf("VerifyCode reached %d times, want 5", f.codes.verifies)
	}

	// The right code is refused too once the budget is spent.
	rec := testutil.Serve(f.h.HandleVerify, testutil.NewFormRequest("/phone-auth/verify", url.Values{
		"phone": {"+447911123456"},
		"code":  {"123456"},
	}))
	if rec.Header().Get("Location") != "" {
		t.Error("throttled number signed in")
	}
}
