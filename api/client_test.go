package api

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"

	"github.com/gofiber/adaptor/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/skillgate/pkg/principal"
	"github.com/papercomputeco/skillgate/pkg/provision"
	testutils "github.com/papercomputeco/skillgate/pkg/utils/test"
	"github.com/papercomputeco/skillgate/pkg/validation"
)

var _ = Describe("Client", func() {
	var (
		ctx    context.Context
		client *Client
		reg    *testutils.MockRegistry
	)

	BeforeEach(func() {
		ctx = context.Background()
		reg = testutils.NewMockRegistry()
		pipeline := provision.New(provision.Config{}, validation.NewDefaultGate(), testutils.NewMockVault(), reg, nil)
		server, err := NewServer(Config{}, pipeline, reg, nil)
		Expect(err).NotTo(HaveOccurred())

		ts := httptest.NewServer(adaptor.FiberApp(server.app))
		DeferCleanup(ts.Close)

		client, err = NewClient(ts.URL, 0)
		Expect(err).NotTo(HaveOccurred())
	})

	It("requires a target", func() {
		_, err := NewClient("", 0)
		Expect(err).To(MatchError(ContainSubstring("API target is required")))
	})

	It("creates skills", func() {
		resp, err := client.CreateSkill(ctx, principal.Principal{UserID: "alice"}, CreateSkillRequest{
			Name:         "weather",
			ManifestText: "# Weather",
			Scripts:      provision.ScriptList{{Path: "main.py", Source: "x = 1"}},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Status).To(Equal("success"))
		Expect(resp.Skill.Name).To(Equal("weather"))
		Expect(reg.Calls()).To(Equal(1))
	})

	It("returns rejections as responses", func() {
		resp, err := client.CreateSkill(ctx, principal.Principal{UserID: "alice"}, CreateSkillRequest{
			Name:         "weather",
			ManifestText: "# Weather",
			Scripts:      provision.ScriptList{{Path: "main.py", Source: "import os"}},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Status).To(Equal("rejected"))
		Expect(resp.ValidationErrors).To(ConsistOf("Line 1: Blocked import 'os'"))
	})

	It("validates code", func() {
		resp, err := client.Validate(ctx, ValidateRequest{Code: "eval('1+1')"})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Valid).To(BeFalse())
		Expect(resp.Errors).To(ConsistOf("Line 1: Blocked call 'eval()'"))
	})

	It("wraps transport errors", func() {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		addr := l.Addr().String()
		Expect(l.Close()).To(Succeed())

		dead, err := NewClient("http://"+addr, 0)
		Expect(err).NotTo(HaveOccurred())
		_, err = dead.Validate(ctx, ValidateRequest{Code: "x = 1"})
		Expect(err).To(MatchError(ContainSubstring("calling /v1/validate")))
	})

	It("reports non-JSON failures", func() {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("maintenance"))
		}))
		defer ts.Close()

		c, err := NewClient(ts.URL, 0)
		Expect(err).NotTo(HaveOccurred())
		_, err = c.CreateSkill(ctx, principal.Principal{UserID: "alice"}, CreateSkillRequest{Name: "weather"})
		Expect(err).To(MatchError(ContainSubstring("HTTP 503: maintenance")))
	})
})
