package board

import (
	"errors"
	"fmt"
	"testing"

	"projboard/internal/dnd"
	"projboard/internal/model"
	"projboard/internal/store"

	"github.com/stretchr/testify/require"
)

func newTestBoard(t *testing.T) *Board {
	t.Helper()
	n := 0
	st := store.New(store.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("p%d", n)
	}))
	return New(st)
}

func ids(ps []model.Project) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestListView_InitialRenderFromExistingProjects(t *testing.T) {
	st := store.New(store.WithIDGenerator(func() string { return "" }))
	st.Create("A", "first one", 1)
	st.Create("B", "second one", 2)
	st.Transition(st.Snapshot()[1].ID, model.StatusFinished)

	b := New(st)
	require.Equal(t, 1, b.Active.Len())
	require.Equal(t, 1, b.Finished.Len())
	require.Equal(t, 1, b.Active.Renders())
}

func TestListView_FilterCorrectness(t *testing.T) {
	b := newTestBoard(t)
	b.Store.Create("A", "aaaaa", 1)
	b.Store.Create("B", "bbbbb", 2)
	b.Store.Create("C", "ccccc", 3)
	b.Store.Transition("p2", model.StatusFinished)

	require.Equal(t, []string{"p1", "p3"}, ids(b.Active.Projects()))
	require.Equal(t, []string{"p2"}, ids(b.Finished.Projects()))
}

func TestListView_RebuildsOnEveryBroadcast(t *testing.T) {
	b := newTestBoard(t)
	var seen []int
	b.Finished.OnRender(func(l *ListView) { seen = append(seen, l.Len()) })

	b.Store.Create("A", "aaaaa", 1)
	b.Store.Transition("p1", model.StatusFinished)
	b.Store.Transition("p1", model.StatusFinished) // no-op

	require.Equal(t, []int{0, 1}, seen)
	require.Equal(t, 3, b.Finished.Renders())
}

func TestListView_Labels(t *testing.T) {
	b := newTestBoard(t)
	require.Equal(t, "active-projects-list", b.Active.ID())
	require.Equal(t, "finished-projects-list", b.Finished.ID())
	require.Equal(t, "ACTIVE PROJECTS", b.Active.Heading())
	require.Equal(t, "FINISHED PROJECTS", b.Finished.Heading())
	require.Equal(t, []string{ActiveListID, FinishedListID}, b.Doc.Containers())

	b.Store.Create("Solo", "one person", 1)
	b.Store.Create("Team", "many people", 3)
	items := b.Active.Items()
	require.Equal(t, "1 person assigned", items[0].PeopleLabel())
	require.Equal(t, "3 persons assigned", items[1].PeopleLabel())
}

func TestListView_RejectsPayloadWithoutText(t *testing.T) {
	b := newTestBoard(t)
	dt := dnd.NewDataTransfer()
	dt.SetData("text/uri-list", "p1")
	require.False(t, b.Finished.DragOver(dt))
	require.False(t, b.Finished.Droppable())
}

func TestDrag_ActiveToFinished(t *testing.T) {
	b := newTestBoard(t)
	b.Store.Create("Build CLI", "ship the tool", 2)
	card, ok := b.Item("p1")
	require.True(t, ok)

	var s dnd.Session
	require.NoError(t, s.Start(card))
	require.Equal(t, "p1", s.Transfer().GetData(dnd.MIMEText))
	require.Equal(t, 1, b.Store.Broadcasts())

	ok, err := s.Over(b.Finished)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, b.Finished.Droppable())
	require.False(t, b.Active.Droppable())

	require.NoError(t, s.Drop())
	require.NoError(t, s.End())

	require.Equal(t, 2, b.Store.Broadcasts())
	require.Empty(t, b.Active.Projects())
	require.Equal(t, []string{"p1"}, ids(b.Finished.Projects()))
	require.Empty(t, b.Doc.Marked())
}

func TestDrag_OntoSameStatusIsNoop(t *testing.T) {
	b := newTestBoard(t)
	b.Store.Create("A", "aaaaa", 1)
	require.NoError(t, b.Move("p1", model.StatusActive))
	require.Equal(t, 1, b.Store.Broadcasts())
	require.Empty(t, b.Doc.Marked())
}

func TestDrag_LeaveWithoutDrop(t *testing.T) {
	b := newTestBoard(t)
	b.Store.Create("A", "aaaaa", 1)
	card, _ := b.Item("p1")

	var s dnd.Session
	require.NoError(t, s.Start(card))
	_, _ = s.Over(b.Finished)
	require.NoError(t, s.Leave())
	require.False(t, b.Finished.Droppable())
	require.NoError(t, s.End())

	require.Equal(t, 1, b.Store.Broadcasts())
	require.Equal(t, []string{"p1"}, ids(b.Active.Projects()))
}

func TestMove_UnknownIDIsRelayedAndIgnored(t *testing.T) {
	b := newTestBoard(t)
	b.Store.Create("A", "aaaaa", 1)
	require.NoError(t, b.Move("nope", model.StatusFinished))
	require.Equal(t, 1, b.Store.Broadcasts())
	require.Empty(t, b.Doc.Marked())
}

func TestMove_BackAndForth(t *testing.T) {
	b := newTestBoard(t)
	b.Store.Create("A", "aaaaa", 1)
	require.NoError(t, b.Move("p1", model.StatusFinished))
	require.NoError(t, b.Move("p1", model.StatusActive))
	require.Equal(t, 3, b.Store.Broadcasts())
	require.Equal(t, []string{"p1"}, ids(b.Active.Projects()))
}

func TestInputView_SubmitCreatesAndClears(t *testing.T) {
	b := newTestBoard(t)
	in := b.Input
	in.Title, in.Description, in.People = "  Build CLI ", "ship the tool", "2"

	p, err := in.Submit()
	require.NoError(t, err)
	require.Equal(t, "Build CLI", p.Title)
	require.Equal(t, 2, p.People)
	require.Equal(t, model.StatusActive, p.Status)
	require.Equal(t, "", in.Title+in.Description+in.People)
	require.Equal(t, "", in.Alert())
	require.Equal(t, []string{"p1"}, ids(b.Active.Projects()))
}

func TestInputView_InvalidInputKeepsFieldsAndSkipsStore(t *testing.T) {
	cases := []struct {
		name, title, desc, people string
	}{
		{"empty title", "", "long enough", "2"},
		{"short description", "T", "abc", "2"},
		{"no people", "T", "long enough", ""},
		{"too many people", "T", "long enough", "6"},
		{"zero people", "T", "long enough", "0"},
		{"not a number", "T", "long enough", "two"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := newTestBoard(t)
			in := b.Input
			in.Title, in.Description, in.People = tc.title, tc.desc, tc.people

			_, err := in.Submit()
			require.ErrorIs(t, err, ErrInvalidInput)
			require.Equal(t, InvalidInputMessage, in.Alert())
			require.Equal(t, tc.title, in.Title)
			require.Equal(t, 0, b.Store.Len())
			require.Equal(t, 0, b.Store.Broadcasts())
		})
	}
}

func TestValidateFields_ReportsEachField(t *testing.T) {
	_, _, _, err := ValidateFields("", "abc", "x")
	require.ErrorIs(t, err, ErrInvalidInput)
	msg := err.Error()
	require.Contains(t, msg, "title is required")
	require.Contains(t, msg, "description must be at least 5 characters")
	require.Contains(t, msg, "people must be a whole number")

	require.Equal(t, []string{
		"title is required",
		"description must be at least 5 characters",
		"people must be a whole number",
	}, FieldErrors(err))
	require.Nil(t, FieldErrors(errors.New("boom")))
}

func TestValidateFields_PeopleMessages(t *testing.T) {
	cases := map[string]string{
		"0":  "people must be at least 1",
		"":   "people is required",
		"  ": "people is required",
		"6":  "people must be at most 5",
	}
	for people, want := range cases {
		_, _, _, err := ValidateFields("T", "long enough", people)
		require.ErrorIs(t, err, ErrInvalidInput, people)
		require.Equal(t, []string{want}, FieldErrors(err), people)
	}
}

func TestScenario_CreateThenFinish(t *testing.T) {
	b := newTestBoard(t)
	var snaps [][]model.Project
	b.Store.Subscribe(func(ps []model.Project) { snaps = append(snaps, ps) })

	b.Input.Title, b.Input.Description, b.Input.People = "Build CLI", "ship the tool", "2"
	_, err := b.Input.Submit()
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	require.Equal(t, model.StatusActive, snaps[0][0].Status)

	require.NoError(t, b.Move("p1", model.StatusFinished))
	require.Len(t, snaps, 2)
	require.Equal(t, model.StatusFinished, snaps[1][0].Status)
	// The first snapshot is not rewritten by later changes.
	require.Equal(t, model.StatusActive, snaps[0][0].Status)
}
