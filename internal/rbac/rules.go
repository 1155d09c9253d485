package rbac

// Default role policy. Instructors author quizzes and see results for their
// own quizzes; students take quizzes and see their own attempts.
var RolePermissions = map[string][]string{
	"student": {
		"quiz:view",
		"quiz:take",
		"quiz:submit",
		"attempt:view-own",
		"notification:view",
		"user:change_password",
	},
	"instructor": {
		"quiz:view",
		"quiz:create",
		"quiz:delete",
		"question:create",
		"attempt:view-all",
		"attempt:delete",
		"users:list",
		"user:change_password",
	},
	"admin": {
		"*", // everything
	},
}
