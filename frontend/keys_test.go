package frontend_test

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/x86sim/frontend"
	"github.com/sarchlab/x86sim/input"
)

type recordingSink struct {
	events []string
}

func (s *recordingSink) KeyDown(code uint16) {
	s.events = append(s.events, fmt.Sprintf("down %04X", code))
}

func (s *recordingSink) KeyUp(code uint16) {
	s.events = append(s.events, fmt.Sprintf("up %04X", code))
}

func (s *recordingSink) Type(r rune) bool {
	s.events = append(s.events, "type "+string(r))
	return true
}

func pressed(code uint16) []string {
	return []string{fmt.Sprintf("down %04X", code), fmt.Sprintf("up %04X", code)}
}

var _ = Describe("FeedTerminal", func() {
	var sink *recordingSink

	BeforeEach(func() {
		sink = &recordingSink{}
	})

	It("should type printable characters", func() {
		Expect(frontend.FeedTerminal(sink, []byte("Hi"))).To(BeFalse())
		Expect(sink.events).To(Equal([]string{"type H", "type i"}))
	})

	It("should map enter, tab and backspace to keys", func() {
		frontend.FeedTerminal(sink, []byte{'\r', '\t', 0x7F})

		var want []string
		want = append(want, pressed(input.Enter)...)
		want = append(want, pressed(input.Tab)...)
		want = append(want, pressed(input.Backspace)...)
		Expect(sink.events).To(Equal(want))
	})

	It("should hold ctrl for control bytes", func() {
		frontend.FeedTerminal(sink, []byte{0x03})
		Expect(sink.events).To(Equal([]string{
			fmt.Sprintf("down %04X", input.LeftCtrl),
			"type c",
			fmt.Sprintf("up %04X", input.LeftCtrl),
		}))
	})

	It("should stop at the quit byte", func() {
		Expect(frontend.FeedTerminal(sink, []byte{'a', frontend.QuitByte, 'b'})).To(BeTrue())
		Expect(sink.events).To(Equal([]string{"type a"}))
	})

	It("should treat a lone escape as the escape key", func() {
		frontend.FeedTerminal(sink, []byte{0x1B})
		Expect(sink.events).To(Equal(pressed(input.Escape)))
	})

	It("should hold alt for escape followed by a character", func() {
		frontend.FeedTerminal(sink, []byte{0x1B, 'x'})
		Expect(sink.events).To(Equal([]string{
			fmt.Sprintf("down %04X", input.LeftAlt),
			"type x",
			fmt.Sprintf("up %04X", input.LeftAlt),
		}))
	})

	DescribeTable("escape sequences",
		func(seq string, code uint16) {
			frontend.FeedTerminal(sink, append([]byte{0x1B}, seq...))
			Expect(sink.events).To(Equal(pressed(code)))
		},
		Entry("up", "[A", input.Up),
		Entry("down", "[B", input.Down),
		Entry("right", "[C", input.Right),
		Entry("left", "[D", input.Left),
		Entry("home", "[H", input.Home),
		Entry("delete", "[3~", input.Delete),
		Entry("page down", "[6~", input.PageDown),
		Entry("F1", "OP", input.F1),
		Entry("F4", "OS", input.F1+3),
		Entry("F5", "[15~", input.F1+4),
		Entry("F10", "[21~", input.F10),
		Entry("F11", "[23~", input.F11),
		Entry("F12", "[24~", input.F12),
	)

	It("should continue after an escape sequence", func() {
		frontend.FeedTerminal(sink, []byte{0x1B, '[', 'A', 'z'})
		Expect(sink.events).To(Equal(append(pressed(input.Up), "type z")))
	})

	It("should ignore unknown sequences", func() {
		frontend.FeedTerminal(sink, []byte{0x1B, '[', '9', '9', '~', 'q'})
		Expect(sink.events).To(Equal([]string{"type q"}))
	})
})
