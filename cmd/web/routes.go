package main

import (
	"net/http"
)

func (app *application) routes() *http.ServeMux {
	mux := http.NewServeMux()

	var (
		common = func(next http.Handler) http.Handler {
			return app.logAndTraceRequest(secureHeaders(app.crossOriginProtection(
				commonContext(app.timeout(next)))))
		}
		noAuth = func(next http.Handler) http.Handler {
			return app.recoverPanic(common(next))
		}
		session = func(next http.Handler) http.Handler {
			return app.recoverPanic(noCache(app.sessionManager.LoadAndSave(
				app.authenticate(common(next)))))
		}
		mustSession = func(next http.Handler) http.Handler {
			return session(app.mustAuthenticate(next))
		}
	)

	mux.Handle("POST /api/auth/register", session(http.HandlerFunc(app.registerPOST)))
	mux.Handle("POST /api/auth/login", session(http.HandlerFunc(app.loginPOST)))
	mux.Handle("POST /api/auth/logout", session(http.HandlerFunc(app.logoutPOST)))
	mux.Handle("GET /api/auth/me", mustSession(http.HandlerFunc(app.meGET)))

	mux.Handle("GET /api/preferences", mustSession(http.HandlerFunc(app.preferencesGET)))
	mux.Handle("PUT /api/preferences", mustSession(http.HandlerFunc(app.preferencesPUT)))

	mux.Handle("POST /api/programs", mustSession(http.HandlerFunc(app.programCreatePOST)))
	mux.Handle("GET /api/programs", mustSession(http.HandlerFunc(app.programListGET)))
	mux.Handle("GET /api/programs/{id}", mustSession(http.HandlerFunc(app.programGET)))
	mux.Handle("PATCH /api/programs/{id}", mustSession(http.HandlerFunc(app.programPATCH)))
	mux.Handle("DELETE /api/programs/{id}", mustSession(http.HandlerFunc(app.programDELETE)))
	mux.Handle("GET /api/programs/{id}/templates", mustSession(http.HandlerFunc(app.programTemplatesGET)))
	mux.Handle("PUT /api/programs/{id}/days/{day}/accessories",
		mustSession(http.HandlerFunc(app.programAccessoriesPUT)))
	mux.Handle("POST /api/programs/{id}/complete-cycle", mustSession(http.HandlerFunc(app.programCompleteCyclePOST)))
	mux.Handle("POST /api/programs/{id}/next-cycle", mustSession(http.HandlerFunc(app.programNextCyclePOST)))
	mux.Handle("GET /api/programs/{id}/training-max-history",
		mustSession(http.HandlerFunc(app.programHistoryGET)))

	mux.Handle("GET /api/workouts", mustSession(http.HandlerFunc(app.workoutListGET)))
	mux.Handle("GET /api/workouts/missed", mustSession(http.HandlerFunc(app.missedGET)))
	mux.Handle("POST /api/workouts/missed/auto", mustSession(http.HandlerFunc(app.missedAutoPOST)))
	mux.Handle("GET /api/workouts/{id}", mustSession(http.HandlerFunc(app.workoutGET)))
	mux.Handle("POST /api/workouts/{id}/complete", mustSession(http.HandlerFunc(app.workoutCompletePOST)))
	mux.Handle("POST /api/workouts/{id}/skip", mustSession(http.HandlerFunc(app.workoutSkipPOST)))
	mux.Handle("POST /api/workouts/{id}/missed", mustSession(http.HandlerFunc(app.workoutMissedPOST)))

	mux.Handle("GET /api/exercises", mustSession(http.HandlerFunc(app.exerciseListGET)))
	mux.Handle("POST /api/exercises", mustSession(http.HandlerFunc(app.exerciseCreatePOST)))
	mux.Handle("GET /api/exercises/{id}", mustSession(http.HandlerFunc(app.exerciseGET)))

	mux.Handle("GET /api/rep-maxes", mustSession(http.HandlerFunc(app.repMaxesGET)))
	mux.Handle("GET /api/rep-maxes/{lift}", mustSession(http.HandlerFunc(app.repMaxHistoryGET)))

	mux.Handle("GET /api/healthy", noAuth(http.HandlerFunc(app.healthy)))

	return mux
}
