package staged_test

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bjaus/staged"
)

var errBoom = errors.New("boom")

// events records hook dispatch across one render call.
type events struct {
	mu   sync.Mutex
	list []string
}

func (e *events) add(s string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.list = append(e.list, s)
}

func (e *events) all() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.list...)
}

// hbf writes "H\n", "B\n" and "F\n" from its header, body and footer stages.
type hbf struct {
	staged.Formatter
}

func newHBF() staged.Handler { return &hbf{} }

func (h *hbf) BuildHooks() map[string]staged.Hook {
	return map[string]staged.Hook{
		"header": func() error { return h.Println("H") },
		"body":   func() error { return h.Println("B") },
		"footer": func() error { return h.Println("F") },
	}
}

// tracer implements every capability and records the order it is called in.
type tracer struct {
	staged.Formatter
	ev *events
}

func (h *tracer) PrepareHooks() map[string]staged.Hook {
	return map[string]staged.Hook{"setup": func() error { h.ev.add("prepare:setup"); return nil }}
}

func (h *tracer) BuildHooks() map[string]staged.Hook {
	return map[string]staged.Hook{
		"header": func() error { h.ev.add("build:header"); return h.Println("header") },
		"footer": func() error { h.ev.add("build:footer"); return h.Println("footer") },
	}
}

func (h *tracer) FinalizeHooks() map[string]staged.Hook {
	return map[string]staged.Hook{"teardown": func() error { h.ev.add("finalize:teardown"); return nil }}
}

func (h *tracer) Finalize() error {
	h.ev.add("finalize")
	return nil
}

func (h *tracer) Layout(build func() error) error {
	h.ev.add("layout:begin")
	if err := h.Println("<<"); err != nil {
		return err
	}
	if err := build(); err != nil {
		return err
	}
	h.ev.add("layout:end")
	return h.Println(">>")
}

func (h *tracer) ApplyTemplate(t *staged.Template) error {
	h.ev.add("template:" + t.Name())
	return nil
}

func tracerReport(ev *events) *staged.ReportType {
	rt := staged.NewReportType("traced").Stages("header", "body", "footer")
	if err := rt.PrepareStage("setup"); err != nil {
		panic(err)
	}
	if err := rt.FinalizeStage("teardown"); err != nil {
		panic(err)
	}
	return rt.Register("text", func() staged.Handler { return &tracer{ev: ev} })
}

// echo writes the options named by keys, one "key=value" line each.
type echo struct {
	staged.Formatter
	keys []string
}

func (h *echo) BuildHooks() map[string]staged.Hook {
	return map[string]staged.Hook{"body": func() error {
		for _, k := range h.keys {
			if err := h.Printf("%s=%s\n", k, h.Options().String(k)); err != nil {
				return err
			}
		}
		return nil
	}}
}

func (h *echo) ApplyTemplate(*staged.Template) error { return nil }

func echoFactory(keys ...string) staged.HandlerFactory {
	return func() staged.Handler { return &echo{keys: keys} }
}

// doc is a mutable payload without a Copy method.
type doc struct {
	Title string
	Lines []string
	Meta  map[string]string
}

// mutator renders a doc and then scribbles over its copy.
type mutator struct {
	staged.Formatter
}

func (h *mutator) BuildHooks() map[string]staged.Hook {
	return map[string]staged.Hook{"body": func() error {
		d := h.Data().(*doc)
		if err := h.Printf("%s:%v:%v\n", d.Title, d.Lines, d.Meta["k"]); err != nil {
			return err
		}
		d.Title = "mutated"
		d.Lines[0] = "mutated"
		d.Lines = append(d.Lines, "extra")
		d.Meta["k"] = "mutated"
		return nil
	}}
}

// binaryBlob writes its []byte payload verbatim.
type binaryBlob struct {
	staged.Formatter
}

func (h *binaryBlob) BinaryOutput() bool { return true }

func (h *binaryBlob) BuildHooks() map[string]staged.Hook {
	return map[string]staged.Hook{"body": func() error {
		_, err := h.Write(h.Data().([]byte))
		return err
	}}
}

// failing returns errBoom from the stage named by its field.
type failing struct {
	staged.Formatter
	at string
}

func (h *failing) PrepareHooks() map[string]staged.Hook {
	return map[string]staged.Hook{"setup": h.fail("prepare")}
}

func (h *failing) BuildHooks() map[string]staged.Hook {
	return map[string]staged.Hook{"body": h.fail("build")}
}

func (h *failing) FinalizeHooks() map[string]staged.Hook {
	return map[string]staged.Hook{"teardown": h.fail("finalize")}
}

func (h *failing) Layout(build func() error) error {
	if h.at == "layout" {
		return errBoom
	}
	return build()
}

func (h *failing) ApplyTemplate(*staged.Template) error {
	return h.fail("template")()
}

func (h *failing) fail(stage string) staged.Hook {
	return func() error {
		if h.at == stage {
			return errBoom
		}
		return nil
	}
}

type greeting struct {
	Name string
}

// transformed supplies a per-format payload.
type transformed struct {
	Name string
	err  error
	seen *events
}

func (p transformed) RenderData(format string) (any, error) {
	if p.seen != nil {
		p.seen.add("transform:" + format)
	}
	if p.err != nil {
		return nil, p.err
	}
	return fmt.Sprintf("%s as %s", p.Name, format), nil
}

// payloadEcho prints its payload with %v.
type payloadEcho struct {
	staged.Formatter
}

func (h *payloadEcho) BuildHooks() map[string]staged.Hook {
	return map[string]staged.Hook{"body": func() error {
		return h.Printf("%v|%s\n", h.Data(), h.Options().String("greeting"))
	}}
}
