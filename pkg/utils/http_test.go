package utils

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ErrorMessage", func() {
	It("prefers the JSON error field", func() {
		Expect(ErrorMessage(409, []byte(`{"error":"name taken","message":"ignored"}`))).To(Equal("HTTP 409: name taken"))
	})

	It("reads a nested error message", func() {
		Expect(ErrorMessage(400, []byte(`{"error":{"code":"X","message":"bad name"}}`))).To(Equal("HTTP 400: bad name"))
	})

	It("falls back to the message field", func() {
		Expect(ErrorMessage(500, []byte(`{"message":"boom"}`))).To(Equal("HTTP 500: boom"))
	})

	It("truncates raw bodies", func() {
		msg := ErrorMessage(502, []byte(strings.Repeat("x", 300)))
		Expect(msg).To(HavePrefix("HTTP 502: xxx"))
		Expect(msg).To(HaveSuffix("..."))
		Expect(len(msg)).To(Equal(len("HTTP 502: ") + 203))
	})

	It("returns just the status for an empty body", func() {
		Expect(ErrorMessage(503, nil)).To(Equal("HTTP 503"))
	})
})
