package designgen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestProperty_Controller_StateMachine drives a controller with random
// prompt edits, generate presses and provider outcomes and checks it
// against a model after every step.
func TestProperty_Controller_StateMachine(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := newBlockingProvider()
		c := newTestController(p, WithPrompt(""))

		prompt := ""
		var pending *pendingCall
		var wantImage bool
		var wantErr string

		defer func() {
			if pending != nil {
				pending.fail(errors.New("done"))
			}
			require.NoError(rt, c.Close())
		}()

		rt.Repeat(map[string]func(*rapid.T){
			"setPrompt": func(rt *rapid.T) {
				prompt = rapid.SampledFrom([]string{"", "a", "a cat in sunglasses", " "}).Draw(rt, "prompt")
				c.SetPrompt(prompt)
			},
			"generate": func(rt *rapid.T) {
				wantAccepted := prompt != "" && pending == nil
				require.Equal(rt, wantAccepted, c.Generate())
				if !wantAccepted {
					return
				}
				pending = p.next(rt)
				require.Equal(rt, prompt, pending.prompt)
				wantImage, wantErr = false, ""
			},
			"resolve": func(rt *rapid.T) {
				if pending == nil {
					rt.Skip("nothing in flight")
				}
				switch rapid.IntRange(0, 3).Draw(rt, "outcome") {
				case 0:
					pending.succeed(mustRef(rt, jpegBytes))
					wantImage, wantErr = true, ""
				case 1:
					msg := rapid.StringMatching(`[a-z]{1,12}`).Draw(rt, "message")
					pending.fail(NewProviderError(msg, nil))
					wantImage, wantErr = false, msg
				case 2:
					pending.fail(&ProviderError{})
					wantImage, wantErr = false, FallbackErrorMessage
				case 3:
					pending.done <- providerResult{panicWith: "boom"}
					wantImage, wantErr = false, FallbackErrorMessage
				}
				pending = nil
				waitIdle(rt, c)
			},
			"": func(rt *rapid.T) {
				view := c.Snapshot()
				loading := pending != nil

				assert.Equal(rt, loading, view.IsLoading)
				assert.Equal(rt, prompt, view.Prompt)
				assert.LessOrEqual(rt, p.maxActive.Load(), int32(1))
				assert.Equal(rt, !loading && prompt != "", c.CanGenerate())

				if loading {
					assert.Equal(rt, PhaseGenerating, view.Phase)
					assert.True(rt, view.ImageRef.IsZero())
					assert.Empty(rt, view.ErrorMessage)
					return
				}
				assert.Equal(rt, wantImage, !view.ImageRef.IsZero())
				assert.Equal(rt, wantErr, view.ErrorMessage)
				assert.False(rt, wantImage && view.HasError(), "image and error are exclusive")
				assert.Equal(rt, wantImage, c.CanExport())
			},
		})
	})
}
