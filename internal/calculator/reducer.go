package calculator

import "strings"

// Reduce returns the state that follows s after action. It is pure and total:
// incomplete or unrecognized actions return s unchanged.
func Reduce(s State, action Action) State {
	switch a := action.(type) {
	case AddDigit:
		return addDigit(s, a.Digit)
	case DeleteDigit:
		return deleteDigit(s)
	case Clear:
		return State{}
	case ChooseOperation:
		return chooseOperation(s, a.Operation)
	case Evaluate:
		return settle(s)
	default:
		return s
	}
}

func addDigit(s State, digit string) State {
	if s.Overwrite {
		s.Current = Text(digit)
		s.Overwrite = false
		return s
	}

	current := s.Current.String()
	if s.Current.Present() && current == "0" {
		if digit == "0" {
			return s
		}
		if digit != "." {
			s.Current = Text(digit)
			return s
		}
	}

	if digit == "." && strings.Contains(current, ".") {
		return s
	}

	s.Current = Text(current + digit)
	return s
}

func deleteDigit(s State) State {
	if s.Overwrite {
		s.Current = None
		s.Overwrite = false
		return s
	}

	if !s.Current.Present() {
		return s
	}

	runes := []rune(s.Current.String())
	switch len(runes) {
	case 0:
		return s
	case 1:
		s.Current = None
	default:
		s.Current = Text(string(runes[:len(runes)-1]))
	}
	return s
}

func chooseOperation(s State, op Operation) State {
	switch {
	case !s.Current.Present() && !s.Previous.Present():
		return s
	case !s.Current.Present():
		s.Operation = op
		return s
	case !s.Previous.Present():
		s.Previous = s.Current
	default:
		// Chained operator: settle the pending expression left to right.
		s.Previous = Text(Compute(s.Previous.String(), s.Operation, s.Current.String()))
	}

	s.Operation = op
	s.Current = None
	return s
}

func settle(s State) State {
	if !s.Previous.Present() || !s.Current.Present() || s.Operation == NoOperation {
		return s
	}

	return State{
		Current:   Text(Compute(s.Previous.String(), s.Operation, s.Current.String())),
		Overwrite: true,
	}
}
