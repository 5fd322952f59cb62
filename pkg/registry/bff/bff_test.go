package bff_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/skillgate/pkg/principal"
	"github.com/papercomputeco/skillgate/pkg/registry"
	"github.com/papercomputeco/skillgate/pkg/registry/bff"
	"github.com/papercomputeco/skillgate/pkg/utils"
)

var _ = Describe("Client", func() {
	var (
		ctx     context.Context
		reg     registry.Registration
		handler http.HandlerFunc
		calls   atomic.Int32
		client  *bff.Client
	)

	BeforeEach(func() {
		ctx = context.Background()
		calls.Store(0)
		reg = registry.Registration{
			Principal:   principal.Principal{UserID: "alice", TenantID: "acme"},
			Name:        "weather",
			DisplayName: "Weather",
			Description: "Forecasts",
			StoragePath: "skills/weather",
		}

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			handler(w, r)
		}))
		DeferCleanup(server.Close)

		var err error
		client, err = bff.NewClient(bff.Config{URL: server.URL + "/", APIKey: "secret"})
		Expect(err).NotTo(HaveOccurred())
	})

	It("requires a URL", func() {
		_, err := bff.NewClient(bff.Config{})
		Expect(err).To(MatchError(ContainSubstring("URL is required")))
	})

	It("posts the registration with internal headers", func() {
		handler = func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.Method).To(Equal(http.MethodPost))
			Expect(r.URL.Path).To(Equal("/internal/skills/user"))
			Expect(r.Header.Get(utils.HeaderInternalAPIKey)).To(Equal("secret"))
			Expect(r.Header.Get(utils.HeaderUserID)).To(Equal("alice"))
			Expect(r.Header.Get(utils.HeaderTenantID)).To(Equal("acme"))

			var body map[string]string
			Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
			Expect(body).To(HaveKeyWithValue("name", "weather"))
			Expect(body).To(HaveKeyWithValue("display_name", "Weather"))
			Expect(body).To(HaveKeyWithValue("storage_path", "skills/weather"))

			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"skill":{"id":"sk-1","name":"weather"}}`))
		}

		skill, err := client.Register(ctx, reg)
		Expect(err).NotTo(HaveOccurred())
		Expect(skill.ID).To(Equal("sk-1"))
		Expect(skill.UserID).To(Equal("alice"))
		Expect(skill.StoragePath).To(Equal("skills/weather"))
	})

	It("accepts a skill nested under data", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"data":{"skill":{"id":"sk-2"}}}`))
		}

		skill, err := client.Register(ctx, reg)
		Expect(err).NotTo(HaveOccurred())
		Expect(skill.ID).To(Equal("sk-2"))
		Expect(skill.Name).To(Equal("weather"))
	})

	It("maps non-2xx responses to registry errors", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":{"code":"BUILTIN_COLLISION","message":"reserved"}}`))
		}
		reg.Name = "my-calendar"

		_, err := client.Register(ctx, reg)
		var regErr *registry.Error
		Expect(err).To(BeAssignableToTypeOf(regErr))
		Expect(registry.StatusOf(err)).To(Equal(409))
		Expect(err.Error()).To(ContainSubstring("BUILTIN_COLLISION"))
		Expect(err.Error()).To(ContainSubstring("HTTP 409: reserved"))
	})

	It("rejects built-in names without calling the backend", func() {
		reg.Name = "drive"
		_, err := client.Register(ctx, reg)
		Expect(registry.StatusOf(err)).To(Equal(409))
		Expect(calls.Load()).To(BeZero())
	})
})
