package cliui_test

import (
	"bytes"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/skillgate/pkg/cliui"
)

var _ = Describe("cliui", func() {
	Describe("Step", func() {
		It("returns the function error and prints a fail mark", func() {
			var buf bytes.Buffer
			boom := errors.New("boom")
			err := cliui.Step(&buf, "uploading", func() error { return boom })
			Expect(err).To(MatchError(boom))
			Expect(buf.String()).To(ContainSubstring("uploading"))
			Expect(buf.String()).To(ContainSubstring(cliui.FailMark))
		})

		It("prints a success mark", func() {
			var buf bytes.Buffer
			Expect(cliui.Step(&buf, "validating", func() error { return nil })).To(Succeed())
			Expect(buf.String()).To(ContainSubstring(cliui.SuccessMark))
		})
	})

	Describe("Report", func() {
		It("lists problems under a fail mark", func() {
			var buf bytes.Buffer
			cliui.Report(&buf, "main.py", []string{"Line 1: Blocked import 'os'"})
			Expect(buf.String()).To(ContainSubstring(cliui.FailMark + " main.py"))
			Expect(buf.String()).To(ContainSubstring("Blocked import 'os'"))
		})

		It("prints a single success line", func() {
			var buf bytes.Buffer
			cliui.Report(&buf, "main.py", nil)
			Expect(buf.String()).To(Equal("  " + cliui.SuccessMark + " main.py\n"))
		})
	})

	DescribeTable("FormatDuration",
		func(d time.Duration, want string) {
			Expect(cliui.FormatDuration(d)).To(Equal(want))
		},
		Entry("milliseconds", 12*time.Millisecond, "12ms"),
		Entry("seconds", 3200*time.Millisecond, "3.2s"),
	)
})
