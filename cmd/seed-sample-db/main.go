package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/clippy-oss/homie/portal-messages/internal/domain"
	"github.com/clippy-oss/homie/portal-messages/internal/repository"
)

func main() {
	generated := flag.Int("generated", 9, "Number of extra conversations to generate after the built-in samples")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed for generated conversations")
	flag.Parse()

	// Default to a sample database in the current directory
	dbPath := "sample_portal.db"
	if flag.NArg() > 0 {
		dbPath = flag.Arg(0)
	}

	fmt.Printf("Using database at: %s\n", dbPath)
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("Failed to create %s: %v", dir, err)
		}
	}

	db, err := repository.OpenSeedDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	now := time.Now()
	conversations := repository.SampleConversations(now)
	conversations = append(conversations, generateConversations(rand.New(rand.NewSource(*seed)), *generated, now)...)

	ctx := context.Background()
	if err := repository.NewSeedRepository(db).Replace(ctx, conversations); err != nil {
		log.Fatalf("Failed to seed conversations: %v", err)
	}

	archived := 0
	for _, c := range conversations {
		if c.IsArchived {
			archived++
		}
	}
	fmt.Printf("Wrote %d conversations (%d archived)\n", len(conversations), archived)
	fmt.Printf("Database location: %s\n", dbPath)
}

func generateConversations(rng *rand.Rand, n int, now time.Time) []*domain.Conversation {
	// Dummy classmate names
	studentNames := []string{
		"Alice Johnson",
		"Bob Smith",
		"Charlie Brown",
		"Diana Prince",
		"Eve Wilson",
		"Frank Miller",
		"Grace Lee",
		"Henry Davis",
		"Iris Chen",
	}

	// Dummy study group names
	groupNames := []string{
		"Physics Lab Partners",
		"History Essay Circle",
		"Chemistry Study Group",
		"Literature Book Club",
		"CS Project Team",
	}

	teacherNames := []string{
		"Prof. Adams",
		"Ms. Rivera",
		"Mr. Okafor",
		"Dr. Nakamura",
	}

	// Opening messages for variety
	openings := []string{
		"Hey! Are you coming to the review session?",
		"Can someone share the notes from today's lecture?",
		"Reminder: the assignment is due Friday at noon.",
		"Thanks for your help with the lab report!",
		"Does anyone want to meet at the library tomorrow?",
		"The quiz has been moved to next Tuesday.",
		"Please read chapter 4 before class.",
		"Great presentation today!",
	}

	replies := []string{
		"Sounds good!",
		"I'll be there",
		"Thanks for letting me know",
		"Can we do 3pm instead?",
		"Sharing them now",
	}

	out := make([]*domain.Conversation, 0, n)
	for i := 0; i < n; i++ {
		id := int64(4 + i)

		var c *domain.Conversation
		switch i % 3 {
		case 0:
			c = domain.NewPrivateConversation(id, studentNames[(i/3)%len(studentNames)])
		case 1:
			name := groupNames[(i/3)%len(groupNames)]
			members := []string{
				studentNames[rng.Intn(len(studentNames))],
				studentNames[rng.Intn(len(studentNames))],
				fmt.Sprintf("+%d more", 2+rng.Intn(6)),
			}
			c = domain.NewGroupConversation(id, name, members)
		default:
			c = domain.NewTeacherConversation(id, teacherNames[(i/3)%len(teacherNames)])
		}

		opening := openings[rng.Intn(len(openings))]
		c.OpeningMessage = opening
		c.LastMessage = opening
		c.OpeningStatus = domain.ReplyStatusDelivered
		c.AvatarRef = repository.AvatarURL(c.DisplayName)
		c.ReceivedAt = now.Add(-time.Duration(10+rng.Intn(3*24*60)) * time.Minute)
		c.IsPinned = rng.Float32() < 0.2    // 20% pinned
		c.IsArchived = rng.Float32() < 0.15 // 15% archived
		if rng.Float32() < 0.5 {
			c.UnreadCount = 1 + rng.Intn(4)
		}

		// Some conversations already carry replies, all fully read
		numReplies := rng.Intn(3)
		for j := 0; j < numReplies; j++ {
			at := c.ReceivedAt.Add(time.Duration(j+1) * time.Minute)
			r := domain.NewReply(c.NextReplyID(at), replies[rng.Intn(len(replies))], at)
			r.Advance(domain.ReplyStatusRead)
			c.Replies = append(c.Replies, r)
		}

		out = append(out, c)
	}
	return out
}
