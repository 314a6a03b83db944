package caps_test

import (
	"math"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/stickycaps/internal/caps"
)

var _ = Describe("Engine", func() {
	var engine *caps.Engine

	BeforeEach(func() {
		engine = caps.NewSeeded(42)
	})

	cfg := func(msg string, p float64) caps.Config {
		return caps.Config{Message: msg, Probability: p, Uppercase: "#ffffff", Lowercase: "#ff0000"}
	}

	It("returns empty output for an empty message", func() {
		out := engine.Render(cfg("", 0.5))
		Expect(out.Runs).To(BeEmpty())
		Expect(out.HTML()).To(BeEmpty())
		Expect(out.UpperFraction()).To(BeZero())
	})

	It("forces every letter uppercase at probability 1", func() {
		out := engine.Render(cfg("Ab3", 1))
		Expect(out.Runs).To(Equal([]caps.Run{
			{Text: "A", Role: caps.RoleUpper},
			{Text: "B", Role: caps.RoleUpper},
			{Text: "3", Role: caps.RoleUnchanged},
		}))
		Expect(out.HTML()).To(Equal(
			`<span style="color: #ffffff">A</span><span style="color: #ffffff">B</span>3`))
	})

	It("forces every letter lowercase at probability 0", func() {
		out := engine.Render(cfg("HELLO World", 0))
		Expect(out.Text()).To(Equal("hello world"))
		for _, run := range out.Runs {
			Expect(run.Role).NotTo(Equal(caps.RoleUpper))
		}
	})

	DescribeTable("clamps out-of-range probabilities",
		func(p float64, want string) {
			Expect(engine.Render(cfg("abc", p)).Text()).To(Equal(want))
		},
		Entry("negative", -3.0, "abc"),
		Entry("NaN", math.NaN(), "abc"),
		Entry("above one", 7.5, "ABC"),
		Entry("positive infinity", math.Inf(1), "ABC"),
	)

	It("passes caseless characters through unchanged at any probability", func() {
		msg := "a1 b-2, c!\t3?"
		for _, p := range []float64{0, 0.25, 0.5, 1} {
			out := engine.Render(cfg(msg, p))
			Expect(strings.ToLower(out.Text())).To(Equal(msg))

			var caseless strings.Builder
			for _, run := range out.Runs {
				if run.Role == caps.RoleUnchanged {
					caseless.WriteString(run.Text)
				}
			}
			Expect(caseless.String()).To(Equal("1 -2, !\t3?"))
		}
	})

	It("coalesces neighbouring caseless characters into one run", func() {
		out := engine.Render(cfg("a 123 b", 1))
		Expect(out.Runs).To(HaveLen(3))
		Expect(out.Runs[1]).To(Equal(caps.Run{Text: " 123 ", Role: caps.RoleUnchanged}))
	})

	It("handles non-ASCII letters", func() {
		Expect(engine.Render(cfg("ñandú Ωμέγα", 1)).Text()).To(Equal("ÑANDÚ ΩΜΈΓΑ"))
		Expect(engine.Render(cfg("ÑANDÚ", 0)).Text()).To(Equal("ñandú"))
		Expect(engine.Render(cfg("漢字", 1)).Runs).To(Equal([]caps.Run{{Text: "漢字", Role: caps.RoleUnchanged}}))
	})

	It("converges on the requested probability", func() {
		const n = 10000
		upper := 0
		for i := 0; i < n; i++ {
			out := engine.Render(cfg("x", 0.5))
			if out.Runs[0].Role == caps.RoleUpper {
				upper++
			}
		}
		Expect(float64(upper) / n).To(BeNumerically("~", 0.5, 0.03))
	})

	It("draws each letter independently", func() {
		out := engine.Render(cfg(strings.Repeat("a", 2000), 0.3))
		Expect(out.UpperFraction()).To(BeNumerically("~", 0.3, 0.05))
	})

	It("is reproducible for a fixed seed", func() {
		a := caps.NewSeeded(7).Render(cfg("reproducible output", 0.5))
		b := caps.NewSeeded(7).Render(cfg("reproducible output", 0.5))
		Expect(a).To(Equal(b))
	})

	It("varies between successive calls", func() {
		msg := strings.Repeat("flicker", 10)
		first := engine.Render(cfg(msg, 0.5)).Text()
		Expect(engine.Render(cfg(msg, 0.5)).Text()).NotTo(Equal(first))
	})
})

var _ = Describe("Output", func() {
	It("escapes markup in letters and caseless text", func() {
		out := caps.NewSeeded(1).Render(caps.Config{
			Message:     `<b>&"x"</b>`,
			Probability: 0,
			Uppercase:   "#fff",
			Lowercase:   "#000",
		})
		markup := out.HTML()
		Expect(markup).NotTo(ContainSubstring("<b>"))
		Expect(markup).NotTo(ContainSubstring("</b>"))
		Expect(markup).To(HavePrefix("&lt;"))
		Expect(markup).To(ContainSubstring("&amp;&#34;"))
		Expect(out.Text()).To(Equal(`<b>&"x"</b>`))
	})

	It("escapes colour values inside the style attribute", func() {
		out := caps.NewSeeded(1).Render(caps.Config{
			Message:     "a",
			Probability: 1,
			Uppercase:   `red"><script>`,
		})
		Expect(out.HTML()).NotTo(ContainSubstring("<script>"))
		Expect(out.HTML()).To(ContainSubstring("&#34;&gt;&lt;script&gt;"))
	})

	It("keeps the text in ANSI form", func() {
		out := caps.NewSeeded(1).Render(caps.Config{Message: "a-b", Probability: 1, Uppercase: "#ffffff"})
		Expect(out.ANSI()).To(ContainSubstring("A"))
		Expect(out.ANSI()).To(ContainSubstring("-"))
		Expect(out.ANSI()).To(ContainSubstring("B"))
	})

	It("names roles", func() {
		Expect(caps.RoleUpper.String()).To(Equal("upper"))
		Expect(caps.RoleLower.String()).To(Equal("lower"))
		Expect(caps.RoleUnchanged.String()).To(Equal("unchanged"))
	})
})
