package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
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

func newHandler(t *testing.T) (*CommandHandler, *service.MessageService, *schedule.ManualScheduler) {
	t.Helper()
	sched := schedule.NewManualScheduler(epoch)
	store := repository.NewConversationStore(repository.SampleConversations(epoch), sched.Now)
	svc := service.NewMessageService(store, sched, nil, service.StatusSimulatorConfig{})
	t.Cleanup(svc.Close)
	return NewCommandHandler(svc), svc, sched
}

func run(t *testing.T, h *CommandHandler, line string) interface{} {
	t.Helper()
	cmd, err := ParseCommand(line)
	require.NoError(t, err)
	result, err := h.Execute(context.Background(), cmd)
	require.NoError(t, err, line)
	return result
}

func runErr(t *testing.T, h *CommandHandler, line string) error {
	t.Helper()
	cmd, err := ParseCommand(line)
	require.NoError(t, err)
	_, err = h.Execute(context.Background(), cmd)
	return err
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input   string
		want    Command
		wantErr bool
	}{
		{input: "/ls", want: Command{Name: "ls", Args: []string{}}},
		{input: "/open 3", want: Command{Name: "open", Args: []string{"3"}, Text: "3"}},
		{input: "/reply  see   you  there", want: Command{Name: "reply", Args: []string{"see", "you", "there"}, Text: "see   you  there"}},
		{input: "  /tab groups  ", want: Command{Name: "tab", Args: []string{"groups"}, Text: "groups"}},
		{input: "", wantErr: true},
		{input: "hello", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCommand(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestExecute_browse(t *testing.T) {
	h, _, _ := newHandler(t)

	list := run(t, h, "/ls").(ListResult)
	assert.Equal(t, 3, list.Count)
	assert.Equal(t, "all", list.Tab)
	assert.Equal(t, "5m ago", list.Conversations[0].TimeLabel)

	list = run(t, h, "/tab teachers").(ListResult)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "Dr. Smith", list.Conversations[0].Name)

	run(t, h, "/tab all")
	list = run(t, h, "/search sarah").(ListResult)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "Sarah Wilson", list.Conversations[0].Name)

	list = run(t, h, "/search").(ListResult)
	assert.Equal(t, 3, list.Count, "empty search clears the filter")

	run(t, h, "/archive 2 on")
	list = run(t, h, "/ls").(ListResult)
	assert.Equal(t, 2, list.Count)
	list = run(t, h, "/archived").(ListResult)
	require.Equal(t, 1, list.Count)
	assert.True(t, list.ShowArchived)
	assert.Equal(t, int64(2), list.Conversations[0].ID)

	list = run(t, h, "/archived off").(ListResult)
	assert.Equal(t, 2, list.Count)

	assert.Error(t, runErr(t, h, "/tab staff"))
	assert.Error(t, runErr(t, h, "/archived maybe"))
	assert.Error(t, runErr(t, h, "/bogus"))
}

func TestExecute_conversationFlow(t *testing.T) {
	h, svc, sched := newHandler(t)

	assert.ErrorIs(t, runErr(t, h, "/reply hi"), errNoOpenConversation)

	detail := run(t, h, "/open 1").(ConversationDetail)
	assert.Equal(t, "Advanced Math Group", detail.Name)
	assert.Zero(t, detail.UnreadCount, "opening marks read")
	assert.Empty(t, detail.Replies)

	msg := run(t, h, "/reply    ").(map[string]string)
	assert.Equal(t, "Nothing to send", msg["message"])

	reply := run(t, h, "/reply I can help with question 3").(ReplyInfo)
	assert.Equal(t, "I can help with question 3", reply.Text)
	assert.Equal(t, "sent", reply.Status)

	sched.Advance(time.Second)
	detail = run(t, h, "/show").(ConversationDetail)
	require.Len(t, detail.Replies, 1)
	assert.Equal(t, "delivered", detail.Replies[0].Status)

	edit := run(t, h, "/edit "+itoa(reply.ID)).(EditInfo)
	assert.Equal(t, "I can help with question 3", edit.Text)
	assert.Error(t, runErr(t, h, "/reply another"), "reply blocked while editing")

	msg = run(t, h, "/save   ").(map[string]string)
	assert.Contains(t, msg["message"], "still editing")

	saved := run(t, h, "/save I can help with questions 3 and 4").(ReplyInfo)
	assert.Equal(t, reply.ID, saved.ID)
	assert.NotNil(t, saved.EditedAt)

	assert.Error(t, runErr(t, h, "/save again"), "no edit in progress")

	run(t, h, "/edit "+itoa(reply.ID))
	msg = run(t, h, "/cancel").(map[string]string)
	assert.Equal(t, "Edit cancelled", msg["message"])

	run(t, h, "/close")
	assert.ErrorIs(t, runErr(t, h, "/show"), errNoOpenConversation)

	c, err := svc.GetConversation(1)
	require.NoError(t, err)
	require.Len(t, c.Replies, 1)
	assert.Equal(t, "I can help with questions 3 and 4", c.Replies[0].Text)
}

func TestExecute_flags(t *testing.T) {
	h, _, _ := newHandler(t)

	info := run(t, h, "/read 3").(ConversationInfo)
	assert.Zero(t, info.UnreadCount)

	info = run(t, h, "/pin 2").(ConversationInfo)
	assert.True(t, info.Pinned)
	info = run(t, h, "/pin 2").(ConversationInfo)
	assert.False(t, info.Pinned, "pin without a value toggles")

	assert.ErrorIs(t, runErr(t, h, "/read"), errNoOpenConversation)
	err := runErr(t, h, "/pin 9 on")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
	assert.Error(t, runErr(t, h, "/pin x"))
}

func TestHeadlessCLI_run(t *testing.T) {
	h, _, _ := newHandler(t)

	input := strings.Join([]string{
		`{"id":"1","command":"ls"}`,
		`{"id":"2","command":"tab","params":{"tab":"groups"}}`,
		`{"id":"3","command":"open","params":{"conversation_id":1}}`,
		`{"id":"4","command":"reply","params":{"text":"On my way"}}`,
		`not json`,
		`{"id":"5","command":"open","params":{"conversation_id":42}}`,
		`{"id":"6","command":"quit"}`,
		`{"id":"7","command":"ls"}`,
	}, "\n") + "\n"

	var out bytes.Buffer
	cli := NewHeadlessCLI(h, strings.NewReader(input), &out)
	require.NoError(t, cli.Run(context.Background()))

	responses := map[string]Response{}
	var anonymous []Response
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var line map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		if _, isEvent := line["event"]; isEvent {
			continue
		}
		var resp Response
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp))
		if resp.ID == "" {
			anonymous = append(anonymous, resp)
			continue
		}
		responses[resp.ID] = resp
	}

	require.Len(t, anonymous, 2, "ready banner and the invalid JSON error")
	assert.True(t, anonymous[0].Success)
	assert.False(t, anonymous[1].Success)

	for _, id := range []string{"1", "2", "3", "4", "6"} {
		assert.True(t, responses[id].Success, "request %s", id)
	}
	assert.False(t, responses["5"].Success)
	assert.Contains(t, responses["5"].Error, "not found")
	assert.NotContains(t, responses, "7", "nothing is processed after quit")

	reply := responses["4"].Data.(map[string]interface{})
	assert.Equal(t, "On my way", reply["text"])
	assert.Equal(t, "sent", reply["status"])
}

func TestSubscribeEvents(t *testing.T) {
	h, svc, sched := newHandler(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := h.SubscribeEvents(ctx, nil)

	reply, err := svc.SendReply(2, "Hello")
	require.NoError(t, err)
	sched.Advance(time.Second)

	var got []Event
	timeout := time.After(time.Second)
	for len(got) < 2 {
		select {
		case evt := <-events:
			got = append(got, evt)
		case <-timeout:
			t.Fatalf("timed out with %d events", len(got))
		}
	}

	assert.Equal(t, "reply_appended", got[0].Type)
	assert.Equal(t, reply.ID, got[0].Data.(ReplyInfo).ID)
	assert.Equal(t, "reply_status", got[1].Type)
	assert.Equal(t, epoch.Add(time.Second), got[1].Timestamp)

	cancel()
	require.Eventually(t, func() bool {
		_, open := <-events
		return !open
	}, time.Second, 5*time.Millisecond)
}

func TestInteractiveCLI_plainTextReplies(t *testing.T) {
	h, svc, _ := newHandler(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out bytes.Buffer
	first := NewInteractiveCLI(h, strings.NewReader("/open 2\nThanks Sarah!\n"), &out)
	require.NoError(t, first.Run(ctx))

	c, err := svc.GetConversation(2)
	require.NoError(t, err)
	require.Len(t, c.Replies, 1)
	assert.Equal(t, "Thanks Sarah!", c.Replies[0].Text)

	second := NewInteractiveCLI(h, strings.NewReader(
		"/edit "+itoa(c.Replies[0].ID)+"\nThanks so much, Sarah!\n/quit\n"), &out)
	require.NoError(t, second.Run(ctx))

	c, err = svc.GetConversation(2)
	require.NoError(t, err)
	assert.Equal(t, "Thanks so much, Sarah!", c.Replies[0].Text)
	assert.Contains(t, out.String(), "Sarah Wilson (private)")
	assert.Contains(t, out.String(), "Goodbye!")
}

// exclusiveWriter records any Write that starts while another is in flight.
type exclusiveWriter struct {
	inFlight atomic.Int32
	overlaps atomic.Int32
	mu       sync.Mutex
	buf      bytes.Buffer
}

func (w *exclusiveWriter) Write(p []byte) (int, error) {
	if w.inFlight.Add(1) > 1 {
		w.overlaps.Add(1)
	}
	defer w.inFlight.Add(-1)
	time.Sleep(20 * time.Microsecond)

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

func (w *exclusiveWriter) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Len()
}

func TestInteractiveCLI_statusEventsWhilePrinting(t *testing.T) {
	h, svc, sched := newHandler(t)

	var input strings.Builder
	input.WriteString("/open 2\n")
	for i := 0; i < 20; i++ {
		input.WriteString("reply " + strconv.Itoa(i) + "\n")
	}
	for i := 0; i < 50; i++ {
		input.WriteString("/show\n")
	}
	input.WriteString("/quit\n")

	done := make(chan struct{})
	var advancer sync.WaitGroup
	advancer.Add(1)
	go func() {
		defer advancer.Done()
		for {
			select {
			case <-done:
				return
			default:
				sched.Advance(100 * time.Millisecond)
				time.Sleep(50 * time.Microsecond)
			}
		}
	}()

	out := &exclusiveWriter{}
	err := NewInteractiveCLI(h, strings.NewReader(input.String()), out).Run(context.Background())
	close(done)
	advancer.Wait()
	require.NoError(t, err)
	assert.Zero(t, out.overlaps.Load(), "output written from two goroutines at once")

	// Run has returned, so nothing may still be printing status changes
	written := out.Len()
	_, err = svc.SendReply(2, "after quit")
	require.NoError(t, err)
	sched.Advance(3 * time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, written, out.Len())
}

func TestHeadlessCLI_queryOnlyFeedsSearch(t *testing.T) {
	h, svc, _ := newHandler(t)

	input := strings.Join([]string{
		`{"id":"1","command":"open","params":{"conversation_id":2}}`,
		`{"id":"2","command":"reply","params":{"query":"not a reply"}}`,
		`{"id":"3","command":"search","params":{"query":"wilson"}}`,
	}, "\n") + "\n"

	var out bytes.Buffer
	require.NoError(t, NewHeadlessCLI(h, strings.NewReader(input), &out).Run(context.Background()))

	c, err := svc.GetConversation(2)
	require.NoError(t, err)
	assert.Empty(t, c.Replies)
	assert.Equal(t, "wilson", h.inbox.Query().Search)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
