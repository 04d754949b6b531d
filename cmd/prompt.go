/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"
)

const (
	defaultTopic    = "nature"
	defaultMaxTurns = 4
)

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func validateMaxTurns(input string) error {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return errors.New("max turns must be a number")
	}
	if n < 2 {
		return errors.New("max turns must be at least 2")
	}
	return nil
}

func promptTopic() (string, error) {
	p := promptui.Prompt{
		Label:   "Enter haiku topic",
		Default: defaultTopic,
	}
	topic, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("topic prompt: %w", err)
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = defaultTopic
	}
	return topic, nil
}

func promptMaxTurns() (int, error) {
	p := promptui.Prompt{
		Label:    "Enter max turns (even number recommended)",
		Default:  strconv.Itoa(defaultMaxTurns),
		Validate: validateMaxTurns,
	}
	input, err := p.Run()
	if err != nil {
		return 0, fmt.Errorf("max turns prompt: %w", err)
	}
	return strconv.Atoi(strings.TrimSpace(input))
}

// confirmSave asks whether the finished session should be written to disk.
func confirmSave() (bool, error) {
	p := promptui.Prompt{
		Label:     "Save session history to file",
		IsConfirm: true,
	}
	_, err := p.Run()
	if errors.Is(err, promptui.ErrAbort) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
