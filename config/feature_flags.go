package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
)

// FeatureFlags manages feature toggles with gradual rollout.
// Rollout buckets are assigned by consistent hashing of the student ID,
// so a student keeps the same bucket across requests.
type FeatureFlags struct {
	mu sync.RWMutex

	features map[string]*Feature

	// Per-student overrides, for testing and debugging.
	studentOverrides map[string]map[string]bool
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Rollout percentage (0-100).
	RolloutPercent int
}

// Predefined feature flag names.
const (
	// === Recommendation features ===
	FeatureRecommendationsCache    = "recommendations.cache"    // Redis result caching
	FeatureRecommendationsExplain  = "recommendations.explain"  // Agent-narrated explanations
	FeatureRecommendationsTrending = "recommendations.trending" // Trending boost in scoring output

	// === Agent features ===
	FeatureAgentRouting   = "agent.routing"    // Free-form question routing
	FeatureAgentClubChat  = "agent.club_chat"  // Per-club personality agents
	FeatureAgentSearch    = "agent.search"     // Agent-formatted event search
	FeatureAgentOnboard   = "agent.onboarding" // Welcome flow for new students
	FeatureAgentDigest    = "agent.digest"     // Weekly digest composition
	FeatureSimilarMatcher = "social.similar"   // Similar-students matching
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:         make(map[string]*Feature),
		studentOverrides: make(map[string]map[string]bool),
	}

	ff.initializeDefaults()
	ff.loadFromEnvironment()

	return ff
}

func (ff *FeatureFlags) initializeDefaults() {
	// Recommendation features - core product, enabled by default
	ff.features[FeatureRecommendationsCache] = &Feature{
		Name:           FeatureRecommendationsCache,
		Description:    "Cache recommendation results in Redis",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureRecommendationsExplain] = &Feature{
		Name:           FeatureRecommendationsExplain,
		Description:    "Agent-narrated recommendation explanations",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureRecommendationsTrending] = &Feature{
		Name:           FeatureRecommendationsTrending,
		Description:    "Include trending events in recommendations",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Agent features
	ff.features[FeatureAgentRouting] = &Feature{
		Name:           FeatureAgentRouting,
		Description:    "Route free-form questions through the router agent",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureAgentClubChat] = &Feature{
		Name:           FeatureAgentClubChat,
		Description:    "Per-club chat agents with personality styles",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureAgentSearch] = &Feature{
		Name:           FeatureAgentSearch,
		Description:    "Agent-formatted event search results",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureAgentOnboard] = &Feature{
		Name:           FeatureAgentOnboard,
		Description:    "Agent-led onboarding for new students",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureAgentDigest] = &Feature{
		Name:           FeatureAgentDigest,
		Description:    "Weekly digest composed by the recommendation agent",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureSimilarMatcher] = &Feature{
		Name:           FeatureSimilarMatcher,
		Description:    "Similar-students matching",
		Enabled:        true,
		RolloutPercent: 50, // Gradual rollout
	}
}

// loadFromEnvironment loads feature flag overrides from env vars.
// Format: FEATURE_<NAME>=true|false|<percent>
// Example: FEATURE_AGENT_CLUB_CHAT=true
// Example: FEATURE_SOCIAL_SIMILAR=50 (50% rollout)
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		envKey := featureNameToEnvKey(name)
		val := os.Getenv(envKey)
		if val == "" {
			continue
		}

		if b, err := strconv.ParseBool(val); err == nil {
			feature.Enabled = b
			if b {
				feature.RolloutPercent = 100
			} else {
				feature.RolloutPercent = 0
			}
			continue
		}

		if p, err := strconv.Atoi(val); err == nil && p >= 0 && p <= 100 {
			feature.Enabled = p > 0
			feature.RolloutPercent = p
		}
	}
}

// featureNameToEnvKey converts feature name to environment variable key.
// "agent.club_chat" -> "FEATURE_AGENT_CLUB_CHAT"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled checks if a feature is enabled for the given student.
// An empty studentID evaluates global state only.
func (ff *FeatureFlags) IsEnabled(featureName, studentID string) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	if studentID != "" {
		if overrides, ok := ff.studentOverrides[studentID]; ok {
			if enabled, ok := overrides[featureName]; ok {
				return enabled
			}
		}
	}

	feature, ok := ff.features[featureName]
	if !ok {
		return false
	}

	if !feature.Enabled {
		return false
	}

	if feature.RolloutPercent < 100 && studentID != "" {
		return isInRollout(studentID, featureName, feature.RolloutPercent)
	}

	return feature.RolloutPercent > 0
}

// isInRollout determines if a student is in the rollout percentage.
// Uses consistent hashing so students stay in their bucket.
func isInRollout(studentID, featureName string, percent int) bool {
	h := fnv.New32a()
	h.Write([]byte(featureName))
	h.Write([]byte(studentID))
	bucket := int(h.Sum32() % 100)
	return bucket < percent
}

// SetStudentOverride sets a feature override for a specific student.
func (ff *FeatureFlags) SetStudentOverride(studentID, featureName string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if _, ok := ff.studentOverrides[studentID]; !ok {
		ff.studentOverrides[studentID] = make(map[string]bool)
	}
	ff.studentOverrides[studentID][featureName] = enabled
}

// ClearStudentOverrides removes all overrides for a student.
func (ff *FeatureFlags) ClearStudentOverrides(studentID string) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	delete(ff.studentOverrides, studentID)
}

// SetRolloutPercent updates the rollout percentage for a feature.
// Thread-safe for live updates.
func (ff *FeatureFlags) SetRolloutPercent(featureName string, percent int) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return ErrFeatureNotFound
	}

	if percent < 0 || percent > 100 {
		return ErrInvalidRolloutPercent
	}

	feature.RolloutPercent = percent
	feature.Enabled = percent > 0

	return nil
}

// GetAllFeatures returns a copy of all feature configurations.
func (ff *FeatureFlags) GetAllFeatures() map[string]*Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	result := make(map[string]*Feature, len(ff.features))
	for k, v := range ff.features {
		featureCopy := *v
		result[k] = &featureCopy
	}
	return result
}

// --- Errors ---

var (
	ErrFeatureNotFound       = &FeatureFlagError{Message: "feature not found"}
	ErrInvalidRolloutPercent = &FeatureFlagError{Message: "rollout percent must be 0-100"}
)

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Message string
}

func (e *FeatureFlagError) Error() string {
	return e.Message
}
