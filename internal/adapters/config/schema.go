package config

// Semafile represents the structure of the sema.yaml configuration document.
type Semafile struct {
	Version      int                   `yaml:"version"`
	Dependencies []DependencyDTO       `yaml:"dependencies"`
	Changes      []ChangeDTO           `yaml:"changes"`
	Commands     map[string]CommandDTO `yaml:"commands"`
	Protect      []string              `yaml:"protect"`
}

// DependencyDTO represents one declared dependency edge.
type DependencyDTO struct {
	Name      string `yaml:"name"`
	Source    string `yaml:"source"`
	Reference string `yaml:"reference"`
}

// ChangeDTO represents one declared change.
type ChangeDTO struct {
	ID        string `yaml:"id"`
	Ref       string `yaml:"ref"`
	Migration string `yaml:"migration"`
	Verify    string `yaml:"verify"`
}

// CommandDTO represents one declared shell invocation.
type CommandDTO struct {
	Run string            `yaml:"run"`
	Dir string            `yaml:"dir"`
	Env map[string]string `yaml:"env"`
}
