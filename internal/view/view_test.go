package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clippy-oss/homie/portal-messages/internal/domain"
	"github.com/clippy-oss/homie/portal-messages/internal/repository"
	"github.com/clippy-oss/homie/portal-messages/internal/schedule"
	"github.com/clippy-oss/homie/portal-messages/internal/service"
)

var epoch = time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)

func sampleSet() []*domain.Conversation {
	convs := repository.SampleConversations(epoch)
	old := domain.NewPrivateConversation(4, "Old Study Buddy")
	old.IsArchived = true
	return append(convs, old)
}

func newService(t *testing.T) (*service.MessageService, *schedule.ManualScheduler) {
	t.Helper()
	sched := schedule.NewManualScheduler(epoch)
	store := repository.NewConversationStore(sampleSet(), sched.Now)
	svc := service.NewMessageService(store, sched, nil, service.StatusSimulatorConfig{})
	t.Cleanup(svc.Close)
	return svc, sched
}

func ids(convs []*domain.Conversation) []int64 {
	out := make([]int64, 0, len(convs))
	for _, c := range convs {
		out = append(out, c.ID)
	}
	return out
}

func TestParseTab(t *testing.T) {
	tests := []struct {
		in      string
		want    Tab
		wantErr bool
	}{
		{in: "", want: TabAll},
		{in: "ALL", want: TabAll},
		{in: "groups", want: TabGroup},
		{in: "Group", want: TabGroup},
		{in: "private", want: TabPrivate},
		{in: " teachers ", want: TabTeacher},
		{in: "teacher", want: TabTeacher},
		{in: "staff", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTab(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApply(t *testing.T) {
	convs := sampleSet()

	tests := []struct {
		name  string
		query Query
		want  []int64
	}{
		{name: "all live", query: Query{Tab: TabAll}, want: []int64{1, 2, 3}},
		{name: "groups", query: Query{Tab: TabGroup}, want: []int64{1}},
		{name: "private", query: Query{Tab: TabPrivate}, want: []int64{2}},
		{name: "teachers", query: Query{Tab: TabTeacher}, want: []int64{3}},
		{name: "search is case-insensitive", query: Query{Tab: TabAll, Search: "sMiTh"}, want: []int64{3}},
		{name: "search matches substring", query: Query{Tab: TabAll, Search: "math"}, want: []int64{1}},
		{name: "search with tab", query: Query{Tab: TabPrivate, Search: "math"}, want: []int64{}},
		{name: "archived only", query: Query{Tab: TabAll, ShowArchived: true}, want: []int64{4}},
		{name: "archived with tab", query: Query{Tab: TabGroup, ShowArchived: true}, want: []int64{}},
		{name: "no match", query: Query{Tab: TabAll, Search: "zzz"}, want: []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(convs, tt.query)))
		})
	}

	assert.Len(t, convs, 4, "input untouched")
}

func TestInbox_filtersAndOpen(t *testing.T) {
	svc, _ := newService(t)
	inbox := NewInbox(svc)

	assert.Equal(t, []int64{1, 2, 3}, ids(inbox.Visible()))

	inbox.SetTab(TabTeacher)
	assert.Equal(t, []int64{3}, ids(inbox.Visible()))

	inbox.SetTab(TabAll)
	inbox.SetSearch("r")
	assert.Equal(t, []int64{1, 2, 3}, ids(inbox.Visible()))
	inbox.SetSearch("wilson")
	assert.Equal(t, []int64{2}, ids(inbox.Visible()))

	inbox.SetSearch("")
	assert.True(t, inbox.ToggleArchived())
	assert.Equal(t, []int64{4}, ids(inbox.Visible()))
	assert.False(t, inbox.ToggleArchived())

	_, ok := inbox.Selected()
	assert.False(t, ok)

	c, err := inbox.Open(1)
	require.NoError(t, err)
	assert.Zero(t, c.UnreadCount, "opening clears unread")

	sel, ok := inbox.Selected()
	require.True(t, ok)
	assert.Equal(t, int64(1), sel.ID)

	inbox.Close()
	_, ok = inbox.Selected()
	assert.False(t, ok)

	_, err = inbox.Open(42)
	assert.True(t, domain.IsNotFound(err))
	_, ok = inbox.SelectedID()
	assert.False(t, ok)
}

func TestInbox_selectedSeesNewReplies(t *testing.T) {
	svc, sched := newService(t)
	inbox := NewInbox(svc)

	_, err := inbox.Open(2)
	require.NoError(t, err)

	reply, err := svc.SendReply(2, "See you at the library")
	require.NoError(t, err)

	sched.Advance(2 * time.Second)
	sel, ok := inbox.Selected()
	require.True(t, ok)
	require.Len(t, sel.Replies, 1)
	assert.Equal(t, reply.ID, sel.Replies[0].ID)
	assert.Equal(t, domain.ReplyStatusRead, sel.Replies[0].Status)
}

func TestComposer_submit(t *testing.T) {
	svc, _ := newService(t)
	comp := NewComposer(svc)
	comp.Attach(2)

	comp.SetDraft("   ")
	assert.False(t, comp.CanSubmit())
	_, ok, err := comp.Submit("   ")
	require.NoError(t, err)
	assert.False(t, ok, "blank drafts are inert")

	comp.SetDraft("Hello")
	assert.True(t, comp.CanSubmit())
	reply, ok, err := comp.Submit(comp.Draft())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Hello", reply.Text)
	assert.Equal(t, domain.ReplyStatusSent, reply.Status)
	assert.Empty(t, comp.Draft(), "draft cleared after send")

	c, err := svc.GetConversation(2)
	require.NoError(t, err)
	assert.Len(t, c.Replies, 1)
}

func TestComposer_submitUnknownConversation(t *testing.T) {
	svc, _ := newService(t)
	comp := NewComposer(svc)
	comp.Attach(99)
	comp.SetDraft("Hello")

	_, ok, err := comp.Submit("Hello")
	assert.False(t, ok)
	assert.True(t, domain.IsNotFound(err))
	assert.Equal(t, "Hello", comp.Draft(), "draft kept on failure")
}

func TestComposer_editFlow(t *testing.T) {
	svc, sched := newService(t)
	comp := NewComposer(svc)
	comp.Attach(2)

	reply, ok, err := comp.Submit("Helo")
	require.NoError(t, err)
	require.True(t, ok)

	_, active := comp.ActiveEdit()
	assert.False(t, active)

	slot, err := comp.StartEdit(reply.ID)
	require.NoError(t, err)
	assert.Equal(t, "Helo", slot.Text)
	assert.False(t, comp.CanSubmit(), "send is disabled while editing")
	_, ok, err = comp.Submit("other")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.True(t, comp.UpdateEdit("Hello"))
	slot, active = comp.ActiveEdit()
	require.True(t, active)
	assert.Equal(t, "Hello", slot.Text)

	_, ok, err = comp.SaveEdit("  ")
	require.NoError(t, err)
	assert.False(t, ok)
	_, active = comp.ActiveEdit()
	assert.True(t, active, "blank save keeps the slot open")

	sched.Advance(time.Second)
	edited, ok, err := comp.SaveEdit("Hello")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, reply.ID, edited.ID)
	assert.Equal(t, "Hello", edited.Text)
	assert.Equal(t, domain.ReplyStatusDelivered, edited.Status, "edit keeps status")
	_, active = comp.ActiveEdit()
	assert.False(t, active)

	c, err := svc.GetConversation(2)
	require.NoError(t, err)
	require.Len(t, c.Replies, 1)
	assert.Equal(t, "Hello", c.Replies[0].Text)
}

func TestComposer_cancelAndSwitch(t *testing.T) {
	svc, _ := newService(t)
	comp := NewComposer(svc)
	comp.Attach(2)

	reply, _, err := comp.Submit("Hi")
	require.NoError(t, err)

	_, err = comp.StartEdit(reply.ID)
	require.NoError(t, err)
	comp.CancelEdit()
	_, active := comp.ActiveEdit()
	assert.False(t, active)

	_, ok, err := comp.SaveEdit("Changed")
	require.NoError(t, err)
	assert.False(t, ok, "save without an edit is a no-op")

	_, err = comp.StartEdit(reply.ID + 100)
	assert.True(t, domain.IsNotFound(err))

	_, err = comp.StartEdit(reply.ID)
	require.NoError(t, err)
	comp.SetDraft("pending")
	comp.Attach(3)
	_, active = comp.ActiveEdit()
	assert.False(t, active, "switching conversations drops the edit")
	assert.Empty(t, comp.Draft())
}
