package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	usersCreatedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "exercise_tracker",
		Subsystem: "users",
		Name:      "created_total",
		Help:      "Number of users created.",
	})
	exercisesLoggedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "exercise_tracker",
		Subsystem: "exercises",
		Name:      "logged_total",
		Help:      "Number of exercises logged.",
	})
	cleanupDeletedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "exercise_tracker",
		Subsystem: "cleanup",
		Name:      "users_deleted_total",
		Help:      "Number of transient users removed by the maintenance sweep.",
	})
)

func init() {
	prometheus.MustRegister(usersCreatedCounter, exercisesLoggedCounter, cleanupDeletedCounter)
}

// RecordUserCreated increments the user creation counter.
func RecordUserCreated() {
	usersCreatedCounter.Inc()
}

// RecordExerciseLogged increments the exercise log counter.
func RecordExerciseLogged() {
	exercisesLoggedCounter.Inc()
}

// RecordCleanupDeleted adds the number of users removed by a sweep.
func RecordCleanupDeleted(count int64) {
	if count <= 0 {
		return
	}
	cleanupDeletedCounter.Add(float64(count))
}
