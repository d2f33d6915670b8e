package repository

import (
	"net/url"
	"time"

	"github.com/clippy-oss/homie/portal-messages/internal/domain"
)

// SampleConversations is the built-in start-up set, timestamped relative to now.
func SampleConversations(now time.Time) []*domain.Conversation {
	math := domain.NewGroupConversation(1, "Advanced Math Group",
		[]string{"Sarah W.", "John D.", "Mike R.", "+5 more"})
	math.LastMessage = "Does anyone understand the homework?"
	math.OpeningMessage = "Hey everyone! Does anyone understand the homework due next week? Let's discuss it here."
	math.OpeningStatus = domain.ReplyStatusDelivered
	math.UnreadCount = 3
	math.ReceivedAt = now.Add(-5 * time.Minute)

	sarah := domain.NewPrivateConversation(2, "Sarah Wilson")
	sarah.LastMessage = "Thanks for helping with the project!"
	sarah.OpeningMessage = "Thanks for helping with the project! I really appreciate your input on the details."
	sarah.OpeningStatus = domain.ReplyStatusRead
	sarah.ReceivedAt = now.Add(-30 * time.Minute)

	smith := domain.NewTeacherConversation(3, "Dr. Smith")
	smith.LastMessage = "Office hours are from 2-4pm today"
	smith.OpeningMessage = "Just a reminder that my office hours are from 2-4pm today. Feel free to drop by!"
	smith.UnreadCount = 1
	smith.ReceivedAt = now.Add(-2 * time.Hour)

	conversations := []*domain.Conversation{math, sarah, smith}
	for _, c := range conversations {
		c.AvatarRef = AvatarURL(c.DisplayName)
	}
	return conversations
}

// AvatarURL builds a generated-initials avatar reference for a display name.
func AvatarURL(name string) string {
	q := url.Values{}
	q.Set("name", name)
	q.Set("size", "48")
	return "https://ui-avatars.com/api/?" + q.Encode()
}
