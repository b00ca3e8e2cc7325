package cli

import (
	"github.com/manifoldco/promptui"

	"researchagent/internal/client"
)

// ExampleTopics are the preset topics offered when no topic is given on the
// command line.
var ExampleTopics = []string{
	"Quantum computing",
	"Artificial intelligence in healthcare",
	"Renewable energy storage",
	"CRISPR gene editing",
	"Autonomous vehicles",
}

const customTopicChoice = "Something else..."

// ChooseTopic lets the user pick one of the example topics or type their own.
// Free-form input is validated with the same rules as submission.
func ChooseTopic() (string, error) {
	items := append(append([]string(nil), ExampleTopics...), customTopicChoice)
	sel := promptui.Select{
		Label: "Pick a research topic",
		Items: items,
		Size:  len(items),
	}
	_, choice, err := sel.Run()
	if err != nil {
		return "", err
	}
	if choice != customTopicChoice {
		return choice, nil
	}

	prompt := promptui.Prompt{
		Label: "Research topic",
		Validate: func(input string) error {
			_, err := client.ValidateTopic(input)
			return err
		},
	}
	return prompt.Run()
}
