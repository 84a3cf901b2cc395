package email

import (
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"ideaforge/internal/core"
)

func testConfig() Config {
	return Config{
		SMTPHost:    "smtp.gmail.com",
		SMTPPort:    587,
		Username:    "sender@gmail.com",
		AppPassword: "app-password",
		Recipient:   "reader@example.com",
		FromName:    "Ideaforge",
	}
}

func testIdea() core.VideoIdea {
	return core.VideoIdea{
		ID:            "idea-1",
		Trend:         "miracle morning",
		TitanName:     "Andrew Huberman",
		Methodology:   "Morning Light Protocol",
		Titles:        []string{"Why your mornings fail", "The 10-minute fix"},
		ThumbnailText: "LIGHT FIRST",
		HookingPhrase: "Your alarm clock is not the problem.",
		PaperCitation: "Walker et al., 2019 (812 citations)",
		RelatedBook:   &core.BookRef{Title: "Why We Sleep", Author: "Matthew Walker"},
		ToolConcept: core.ToolConcept{
			Name:        "Light Tracker",
			Level:       2,
			Description: "Logs morning light exposure",
			Features:    []string{"Sunrise reminder", "Streak view"},
		},
		GeneratedAt: time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestSendIdeaReportNotConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.AppPassword = ""

	s := NewSender(cfg)
	err := s.SendIdeaReport(testIdea())
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("Expected ErrNotConfigured, got %v", err)
	}
}

func TestSendIdeaReportBuildsMessage(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	s := NewSenderWithFunc(testConfig(), func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	})

	if err := s.SendIdeaReport(testIdea()); err != nil {
		t.Fatalf("SendIdeaReport failed: %v", err)
	}

	if gotAddr != "smtp.gmail.com:587" {
		t.Errorf("Expected gmail SMTP address, got %s", gotAddr)
	}
	if gotFrom != "sender@gmail.com" {
		t.Errorf("Expected envelope sender, got %s", gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "reader@example.com" {
		t.Errorf("Expected the configured recipient, got %v", gotTo)
	}

	body := string(gotMsg)
	if !strings.Contains(body, "Subject: New content idea: Andrew Huberman x miracle morning") {
		t.Error("Expected a subject naming the expert and trend")
	}
	if !strings.Contains(body, "Content-Type: text/html") {
		t.Error("Expected an HTML content type")
	}
	for _, fragment := range []string{
		"Why your mornings fail",
		"LIGHT FIRST",
		"Your alarm clock is not the problem.",
		"Walker et al., 2019",
		"Why We Sleep",
		"Light Tracker",
	} {
		if !strings.Contains(body, fragment) {
			t.Errorf("Expected the body to contain %q", fragment)
		}
	}
}

func TestSendHabitGuideBuildsMessage(t *testing.T) {
	var gotMsg []byte
	s := NewSenderWithFunc(testConfig(), func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		gotMsg = msg
		return nil
	})

	analysis := core.HabitAnalysis{
		PersonName:  "Shohei Ohtani",
		PersonTitle: "Baseball player",
		CoreMessage: "Break a dream into 64 daily actions",
		Description: "Uses a mandala chart to decompose one goal.",
		ActionGuide: []string{"Draw the chart", "Fill the 8 themes", "Review weekly"},
	}
	vibe := core.VibeCodingIdea{
		AppName:         "Mandala Maker",
		Description:     "Interactive 9x9 goal grid",
		Features:        []string{"Grid editor", "Progress heatmap"},
		TechStack:       []string{"React", "SQLite"},
		DifficultyLevel: 3,
	}

	if err := s.SendHabitGuide(analysis, vibe); err != nil {
		t.Fatalf("SendHabitGuide failed: %v", err)
	}

	body := string(gotMsg)
	if !strings.Contains(body, "Subject: Habit guide: Shohei Ohtani") {
		t.Error("Expected a subject naming the person")
	}
	for _, fragment := range []string{"Mandala Maker", "Draw the chart", "Progress heatmap", "React, SQLite"} {
		if !strings.Contains(body, fragment) {
			t.Errorf("Expected the body to contain %q", fragment)
		}
	}
}

func TestDeliveryErrorsAreWrapped(t *testing.T) {
	s := NewSenderWithFunc(testConfig(), func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		return errors.New("connection refused")
	})

	err := s.SendIdeaReport(testIdea())
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Expected the SMTP error to be wrapped, got %v", err)
	}
}
