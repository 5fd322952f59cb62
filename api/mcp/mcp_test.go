package mcp_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/skillgate/api/mcp"
	"github.com/papercomputeco/skillgate/pkg/logger"
	"github.com/papercomputeco/skillgate/pkg/provision"
	testutils "github.com/papercomputeco/skillgate/pkg/utils/test"
	"github.com/papercomputeco/skillgate/pkg/validation"
)

var _ = Describe("MCP Server", func() {
	var pipeline *provision.Pipeline

	BeforeEach(func() {
		pipeline = provision.New(
			provision.Config{},
			validation.NewDefaultGate(),
			testutils.NewMockVault(),
			testutils.NewMockRegistry(),
			nil,
		)
	})

	Describe("NewServer", func() {
		It("returns an error when pipeline is nil", func() {
			_, err := mcp.NewServer(mcp.Config{Logger: logger.Nop()})
			Expect(err).To(MatchError(ContainSubstring("pipeline is required")))
		})

		It("returns an error when logger is nil", func() {
			_, err := mcp.NewServer(mcp.Config{Pipeline: pipeline})
			Expect(err).To(MatchError(ContainSubstring("logger is required")))
		})

		It("creates a server with an HTTP handler", func() {
			server, err := mcp.NewServer(mcp.Config{Pipeline: pipeline, Logger: logger.Nop()})
			Expect(err).NotTo(HaveOccurred())
			Expect(server.Handler()).NotTo(BeNil())
		})
	})
})
