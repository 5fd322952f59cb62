package api

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("userLimiter", func() {
	It("allows everything when disabled", func() {
		l := newUserLimiter(0)
		for range 100 {
			Expect(l.allow("alice")).To(BeTrue())
		}
	})

	It("refills over time", func() {
		now := time.Unix(1735689600, 0)
		l := newUserLimiter(2)
		l.now = func() time.Time { return now }

		Expect(l.allow("alice")).To(BeTrue())
		Expect(l.allow("alice")).To(BeTrue())
		Expect(l.allow("alice")).To(BeFalse())

		now = now.Add(30 * time.Second)
		Expect(l.allow("alice")).To(BeTrue())
	})

	It("forgets idle users", func() {
		now := time.Unix(1735689600, 0)
		l := newUserLimiter(1)
		l.now = func() time.Time { return now }

		Expect(l.allow("alice")).To(BeTrue())
		now = now.Add(2 * visitorTTL)
		Expect(l.allow("bob")).To(BeTrue())
		Expect(l.visitors).NotTo(HaveKey("alice"))
	})
})
