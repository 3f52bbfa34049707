// Package recommender implements user-based collaborative filtering over an
// in-memory set of rating observations.
//
// A request runs four stages in order: the observations are pivoted into a
// dense user x item matrix, each item column is min-max scaled into [0, 1],
// users are compared by cosine similarity on the scaled rows, and the raw
// ratings of the closest neighbours are averaged into item scores. Items the
// target user already rated are dropped.
//
// Every call rebuilds its matrices from the observations it is given. Nothing
// is cached or shared between calls, so concurrent use is safe as long as the
// caller does not mutate the observation slice while a call is running.
package recommender

const (
	DefaultNumRecommendations = 5
	DefaultNeighborhoodSize   = 5
)

// Options tunes a single recommendation request. Zero values fall back to the
// package defaults.
type Options struct {
	NumRecommendations int
	NeighborhoodSize   int
	// Bounds, when set, rejects ratings outside the range.
	Bounds *RatingBounds
}

// Result is the outcome of Compute.
type Result struct {
	UserID    int64        `json:"user_id"`
	Items     []ScoredItem `json:"items"`
	Neighbors []Neighbor   `json:"neighbors"`
}

// ItemIDs returns the recommended item ids in rank order
func (r *Result) ItemIDs() []int64 {
	ids := make([]int64, len(r.Items))
	for i, item := range r.Items {
		ids[i] = item.ItemID
	}
	return ids
}

func (o Options) withDefaults() Options {
	if o.NumRecommendations <= 0 {
		o.NumRecommendations = DefaultNumRecommendations
	}
	if o.NeighborhoodSize <= 0 {
		o.NeighborhoodSize = DefaultNeighborhoodSize
	}
	return o
}

// Recommend returns up to opts.NumRecommendations item ids for targetUser.
// It fails with InsufficientDataError when there are no observations or the
// user has none, and with InvalidObservationError on unusable ratings. When
// the user is the only one in the data, or every item is already rated, the
// result is empty.
func Recommend(observations []Observation, targetUser int64, opts Options) ([]int64, error) {
	res, err := Compute(observations, targetUser, opts)
	if err != nil {
		return nil, err
	}
	return res.ItemIDs(), nil
}

// Compute runs the full pipeline and returns the scored items together with
// the neighbours they were drawn from.
func Compute(observations []Observation, targetUser int64, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	if len(observations) == 0 {
		return nil, &InsufficientDataError{UserID: targetUser, Reason: "no observations"}
	}
	if err := ValidateObservations(observations, opts.Bounds); err != nil {
		return nil, err
	}

	ratings, err := BuildMatrix(observations, targetUser)
	if err != nil {
		return nil, err
	}
	target := ratings.UserRow(targetUser)

	normalized := Normalize(ratings.Values)
	sim := SimilarityMatrix(normalized)
	neighbors := RankNeighbors(sim, ratings.Users, target, opts.NeighborhoodSize)

	return &Result{
		UserID:    targetUser,
		Items:     Aggregate(ratings, neighbors, target, opts.NumRecommendations),
		Neighbors: neighbors,
	}, nil
}
