package bdd

import (
	"context"
	"fmt"
	"os"
	"testing"

	"social_network_service/internal/chat/domain"

	"github.com/cucumber/godog"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Paths:  []string{"./featureFiles"}, // 指向 feature 檔相對路徑
			Format: "pretty",
			Output: os.Stdout,
		},
	}

	if suite.Run() != 0 {
		t.Fail()
	}
}

// InitializeScenario 註冊 Gherkin 與 Step Definition 的對應
func InitializeScenario(s *godog.ScenarioContext) {
	s.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		follows = map[string]map[string]bool{}
		chatStates = map[string]domain.ChatState{}
		return ctx, nil
	})

	s.Step(`^"([^"]*)" follows "([^"]*)"$`, userFollows)
	s.Step(`^"([^"]*)" does not follow "([^"]*)"$`, userDoesNotFollow)
	s.Step(`^"([^"]*)" sends a first message to "([^"]*)"$`, userSendsFirstMessageTo)
	s.Step(`^"([^"]*)" accepts the request from "([^"]*)"$`, userAcceptsRequestFrom)
	s.Step(`^"([^"]*)" declines the request from "([^"]*)"$`, userDeclinesRequestFrom)
	s.Step(`^the chat should appear in "([^"]*)" request list$`, chatShouldBeInRequestList)
	s.Step(`^the chat should appear in "([^"]*)" active list$`, chatShouldBeInActiveList)
	s.Step(`^the chat should be hidden from "([^"]*)"$`, chatShouldBeHidden)
}

// 每個 scenario 重置的 in-memory 世界
var (
	follows    = map[string]map[string]bool{}
	chatStates = map[string]domain.ChatState{}
)

func chatKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ":" + b
}

func userFollows(follower, followee string) error {
	if follows[follower] == nil {
		follows[follower] = map[string]bool{}
	}
	follows[follower][followee] = true
	return nil
}

func userDoesNotFollow(follower, followee string) error {
	delete(follows[follower], followee)
	return nil
}

func userSendsFirstMessageTo(sender, recipient string) error {
	key := chatKey(sender, recipient)
	state, ok := chatStates[key]
	if !ok {
		state = domain.StateUnknown
	}

	if state == domain.StateUnknown {
		// 收件方已追蹤發起方就直接開 active chat，否則進 request
		if follows[recipient][sender] {
			state = domain.Transition(state, domain.EventSyncActive)
		} else {
			state = domain.Transition(state, domain.EventSyncPending)
		}
	} else {
		state = domain.Transition(state, domain.EventInbound)
	}

	chatStates[key] = state
	return nil
}

func userAcceptsRequestFrom(recipient, sender string) error {
	key := chatKey(sender, recipient)
	if _, ok := chatStates[key]; !ok {
		return fmt.Errorf("no chat between %s and %s", sender, recipient)
	}
	chatStates[key] = domain.Transition(chatStates[key], domain.EventAccept)
	return nil
}

func userDeclinesRequestFrom(recipient, sender string) error {
	key := chatKey(sender, recipient)
	if _, ok := chatStates[key]; !ok {
		return fmt.Errorf("no chat between %s and %s", sender, recipient)
	}
	chatStates[key] = domain.Transition(chatStates[key], domain.EventDecline)
	return nil
}

func stateOfOnlyChat(user string) (domain.ChatState, error) {
	for key, state := range chatStates {
		_ = key
		return state, nil
	}
	return domain.StateUnknown, fmt.Errorf("no chat recorded for %s", user)
}

func chatShouldBeInRequestList(user string) error {
	state, err := stateOfOnlyChat(user)
	if err != nil {
		return err
	}
	if state != domain.StatePending {
		return fmt.Errorf("expected pending, got %s", state)
	}
	return nil
}

func chatShouldBeInActiveList(user string) error {
	state, err := stateOfOnlyChat(user)
	if err != nil {
		return err
	}
	if state != domain.StateActive {
		return fmt.Errorf("expected active, got %s", state)
	}
	return nil
}

func chatShouldBeHidden(user string) error {
	state, err := stateOfOnlyChat(user)
	if err != nil {
		return err
	}
	if state != domain.StateDiscarded {
		return fmt.Errorf("expected discarded, got %s", state)
	}
	return nil
}
