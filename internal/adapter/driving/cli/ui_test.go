package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUi implements cli.Ui with scripted answers and records all output.
type fakeUi struct {
	answers []string
	queries []string
	output  []string
	errors  []string
}

func (u *fakeUi) Ask(query string) (string, error) {
	u.queries = append(u.queries, query)
	if len(u.answers) == 0 {
		return "", errors.New("EOF")
	}
	a := u.answers[0]
	u.answers = u.answers[1:]
	return a, nil
}

func (u *fakeUi) AskSecret(query string) (string, error) { return u.Ask(query) }
func (u *fakeUi) Output(msg string)                      { u.output = append(u.output, msg) }
func (u *fakeUi) Info(msg string)                        { u.output = append(u.output, msg) }
func (u *fakeUi) Error(msg string)                       { u.errors = append(u.errors, msg) }
func (u *fakeUi) Warn(msg string)                        { u.errors = append(u.errors, msg) }

func boolPtr(b bool) *bool { return &b }

func TestPrompter_AskYesNo(t *testing.T) {
	tests := []struct {
		name     string
		def      *bool
		answers  []string
		want     bool
		wantHint string
	}{
		{name: "yes", answers: []string{"y"}, want: true, wantHint: "[yn]"},
		{name: "full word any case", answers: []string{"YES"}, want: true, wantHint: "[yn]"},
		{name: "no", answers: []string{"n"}, want: false, wantHint: "[yn]"},
		{name: "empty takes default yes", def: boolPtr(true), answers: []string{""}, want: true, wantHint: "[Yn]"},
		{name: "empty takes default no", def: boolPtr(false), answers: []string{"  "}, want: false, wantHint: "[yN]"},
		{name: "invalid then valid", answers: []string{"maybe", "", "y"}, want: true, wantHint: "[yn]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ui := &fakeUi{answers: tt.answers}
			p := NewPrompter(ui, false)

			got, err := p.AskYesNo("Overwrite?", tt.def)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "Overwrite? "+tt.wantHint, ui.queries[0])
		})
	}
}

func TestPrompter_AskYesNo_GivesUp(t *testing.T) {
	ui := &fakeUi{answers: []string{"a", "b", "c", "d", "e", "y"}}
	p := NewPrompter(ui, false)

	_, err := p.AskYesNo("Overwrite?", nil)

	assert.Error(t, err)
	assert.Len(t, ui.queries, maxAttempts)
}

func TestPrompter_AskYesNo_ReadError(t *testing.T) {
	p := NewPrompter(&fakeUi{}, false)

	_, err := p.AskYesNo("Overwrite?", boolPtr(false))

	assert.Error(t, err)
}

func TestPrompter_AskChoice(t *testing.T) {
	choices := []string{"Automatically when a new tag matching v* is pushed", "Manually by running a GitHub Action"}

	t.Run("lists choices and takes a number", func(t *testing.T) {
		ui := &fakeUi{answers: []string{"1"}}
		p := NewPrompter(ui, false)

		got, err := p.AskChoice("How would you like releases for foo to be triggered?", choices, 1)

		require.NoError(t, err)
		assert.Equal(t, 0, got)
		assert.Equal(t, []string{
			"How would you like releases for foo to be triggered?",
			"  1) Automatically when a new tag matching v* is pushed",
			"  2) Manually by running a GitHub Action",
		}, ui.output)
		assert.Equal(t, []string{"Choose an option [2]:"}, ui.queries)
	})

	t.Run("empty answer takes default", func(t *testing.T) {
		p := NewPrompter(&fakeUi{answers: []string{""}}, false)

		got, err := p.AskChoice("Trigger?", choices, 1)

		require.NoError(t, err)
		assert.Equal(t, 1, got)
	})

	t.Run("out of range is asked again", func(t *testing.T) {
		ui := &fakeUi{answers: []string{"3", "zero", "2"}}
		p := NewPrompter(ui, false)

		got, err := p.AskChoice("Trigger?", choices, 0)

		require.NoError(t, err)
		assert.Equal(t, 1, got)
		assert.Len(t, ui.queries, 3)
	})

	t.Run("no choices", func(t *testing.T) {
		_, err := NewPrompter(&fakeUi{}, false).AskChoice("Trigger?", nil, 0)
		assert.Error(t, err)
	})
}

func TestPrompter_ColorOnlyWhenEnabled(t *testing.T) {
	ui := &fakeUi{}
	p := NewPrompter(ui, false)

	p.Success("done [1]")
	p.Error("failed")
	require.Equal(t, []string{"done [1]"}, ui.output)
	require.Equal(t, []string{"failed"}, ui.errors)

	p.SetColor(true)
	p.Success("done")
	assert.Equal(t, "\033[32mdone\033[0m", ui.output[1])
}

func TestPrompter_SayAndSecret(t *testing.T) {
	ui := &fakeUi{answers: []string{"hunter2"}}
	p := NewPrompter(ui, true)

	p.Say("Enter your rubygems.org credentials.")
	secret, err := p.AskSecret("Password:")

	require.NoError(t, err)
	assert.Equal(t, "hunter2", secret)
	assert.Equal(t, []string{"Enter your rubygems.org credentials."}, ui.output)
	assert.Equal(t, []string{"Password:"}, ui.queries)
}
