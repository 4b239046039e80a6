package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"student": {
		"exam:view",
		"attempt:submit",
		"result:view-own",
	},
	"instructor": {
		"exam:create",
		"exam:view",
		"exam:view-keys",
		"result:view-all",
	},
	"admin": {
		"*", // everything
	},
}
