package model

// Environment is a GitHub deployment environment. URL is the page on GitHub
// where operators configure its protection rules.
type Environment struct {
	Name string
	URL  string
}
