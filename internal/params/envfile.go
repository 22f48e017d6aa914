package params

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/vvka-141/mdmerge/pkg/mdmerge"
)

// Environment variables consulted for work-item defaults.
const (
	EnvDeveloper = "MDMERGE_DEVELOPER"
	EnvWorkTeam  = "MDMERGE_WORK_TEAM"
	EnvUserStory = "MDMERGE_USER_STORY"
)

// WorkItemDefaults assembles a WorkItem from the process environment
// and an optional .env file in the project root. A .env value never
// overrides a value already present in the environment.
func WorkItemDefaults(projectPath string) mdmerge.WorkItem {
	env := map[string]string{}
	if projectPath != "" {
		if fileEnv, err := godotenv.Read(filepath.Join(projectPath, ".env")); err == nil {
			env = fileEnv
		}
	}

	get := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return env[key]
	}

	return mdmerge.WorkItem{
		Developer: get(EnvDeveloper),
		WorkTeam:  get(EnvWorkTeam),
		UserStory: get(EnvUserStory),
	}
}
