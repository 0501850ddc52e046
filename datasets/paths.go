package datasets

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Paths holds the locations of the five inputs every map is drawn from.
type Paths struct {
	Countries string `env:"PATH_COUNTRIES,required"`
	Disputed  string `env:"PATH_DISPUTED,required"`
	Lakes     string `env:"PATH_LAKES,required"`
	Rivers    string `env:"PATH_RIVERS,required"`
	Raster    string `env:"PATH_RASTER,required"`
}

// EnvVars lists the variables Paths is read from, in declaration order.
var EnvVars = []string{
	"PATH_COUNTRIES",
	"PATH_DISPUTED",
	"PATH_LAKES",
	"PATH_RIVERS",
	"PATH_RASTER",
}

// MissingPathsError names every variable that was not set.
type MissingPathsError struct {
	Vars []string
}

func (e *MissingPathsError) Error() string {
	return "environment variable(s) not set: " + strings.Join(e.Vars, ", ")
}

// LoadEnvFile loads variables from a .env style file without overriding
// anything already set. A missing file is not an error.
func LoadEnvFile(filename string) error {
	if filename == "" {
		return nil
	}
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(filename); err != nil {
		return fmt.Errorf("failed to load env file '%s': %w", filename, err)
	}
	return nil
}

// LoadPaths reads all five paths from the environment. When any are unset
// the returned error is a *MissingPathsError covering all of them.
func LoadPaths() (Paths, error) {
	var paths Paths

	err := env.Parse(&paths)
	if err == nil {
		return paths, nil
	}

	var missing []string

	var aggErr env.AggregateError
	if errors.As(err, &aggErr) {
		for _, fieldErr := range aggErr.Errors {
			var notSet env.VarIsNotSetError
			if !errors.As(fieldErr, &notSet) {
				return paths, fmt.Errorf("error getting dataset paths: %w", err)
			}
			missing = append(missing, notSet.Key)
		}
	}

	if len(missing) == 0 {
		return paths, fmt.Errorf("error getting dataset paths: %w", err)
	}

	sort.SliceStable(missing, func(i, j int) bool {
		return envVarIndex(missing[i]) < envVarIndex(missing[j])
	})

	return paths, &MissingPathsError{Vars: missing}
}

func envVarIndex(name string) int {
	for idx, envVar := range EnvVars {
		if envVar == name {
			return idx
		}
	}
	return len(EnvVars)
}
