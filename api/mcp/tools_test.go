package mcp

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/skillgate/pkg/logger"
	"github.com/papercomputeco/skillgate/pkg/provision"
	testutils "github.com/papercomputeco/skillgate/pkg/utils/test"
	"github.com/papercomputeco/skillgate/pkg/validation"
)

func resultJSON(result *mcp.CallToolResult) map[string]any {
	Expect(result.Content).To(HaveLen(1))
	text, ok := result.Content[0].(*mcp.TextContent)
	Expect(ok).To(BeTrue())

	var got map[string]any
	Expect(json.Unmarshal([]byte(text.Text), &got)).To(Succeed())
	return got
}

var _ = Describe("Tools", func() {
	var (
		ctx    context.Context
		store  *testutils.MockVault
		reg    *testutils.MockRegistry
		server *Server
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = testutils.NewMockVault()
		reg = testutils.NewMockRegistry()

		var err error
		server, err = NewServer(Config{
			Pipeline: provision.New(provision.Config{}, validation.NewDefaultGate(), store, reg, nil),
			Logger:   logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("validate_code", func() {
		It("reports blocked code", func() {
			result, out, err := server.handleValidateCode(ctx, nil, ValidateCodeInput{
				UserID: "alice",
				Code:   "import os\nos.system('ls')",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(out.Valid).To(BeFalse())
			Expect(out.Errors).To(ContainElement("Line 1: Blocked import 'os'"))
		})

		It("accepts safe code", func() {
			_, out, err := server.handleValidateCode(ctx, nil, ValidateCodeInput{
				UserID: "alice",
				Code:   "def hello():\n    return {'ok': True}\n",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Valid).To(BeTrue())
			Expect(out.Errors).To(BeEmpty())
		})
	})

	Describe("create_skill", func() {
		It("creates a skill", func() {
			result, _, err := server.handleCreateSkill(ctx, nil, CreateSkillInput{
				UserID:       "alice",
				Name:         "weather",
				DisplayName:  "Weather",
				ManifestText: "# Weather",
				Scripts:      provision.ScriptList{{Path: "main.py", Source: "x = 1"}},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(resultJSON(result)).To(HaveKeyWithValue("status", "success"))
			Expect(reg.Calls()).To(Equal(1))
		})

		It("returns rejections as tool errors", func() {
			result, _, err := server.handleCreateSkill(ctx, nil, CreateSkillInput{
				UserID:       "alice",
				Name:         "weather",
				ManifestText: "# Weather",
				Scripts:      provision.ScriptList{{Path: "main.py", Source: "import socket"}},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())

			got := resultJSON(result)
			Expect(got).To(HaveKeyWithValue("status", "rejected"))
			Expect(got["validation_errors"]).To(ConsistOf("Line 1: Blocked import 'socket'"))
			Expect(store.Calls()).To(BeZero())
			Expect(reg.Calls()).To(BeZero())
		})

		It("returns malformed requests as tool errors", func() {
			result, _, err := server.handleCreateSkill(ctx, nil, CreateSkillInput{
				UserID: "alice",
				Name:   "Bad Name",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
			Expect(resultJSON(result)["error"]).To(ContainSubstring("invalid skill request"))
		})
	})
})
