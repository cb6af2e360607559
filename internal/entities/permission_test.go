package entities

import "testing"

func TestSubject_String(t *testing.T) {
	tests := []struct {
		name    string
		subject Subject
		want    string
	}{
		{
			name:    "user subject",
			subject: Subject{Type: SubjectUser, ID: "alice"},
			want:    "user:alice",
		},
		{
			name:    "role subject",
			subject: Subject{Type: SubjectRole, ID: "admin"},
			want:    "role:admin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.subject.String(); got != tt.want {
				t.Errorf("Subject.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPermission_Validate(t *testing.T) {
	tests := []struct {
		name    string
		perm    Permission
		wantErr bool
	}{
		{
			name: "valid user grant",
			perm: Permission{
				SubjectType: SubjectUser,
				SubjectID:   "alice",
				ResourceID:  "docs/readme",
				Action:      "read",
			},
			wantErr: false,
		},
		{
			name: "valid role grant",
			perm: Permission{
				SubjectType: SubjectRole,
				SubjectID:   "admin",
				ResourceID:  "docs",
				Action:      "delete",
			},
			wantErr: false,
		},
		{
			name: "unknown subject type",
			perm: Permission{
				SubjectType: "group",
				SubjectID:   "eng",
				ResourceID:  "docs",
				Action:      "read",
			},
			wantErr: true,
		},
		{
			name: "missing subject ID",
			perm: Permission{
				SubjectType: SubjectUser,
				ResourceID:  "docs",
				Action:      "read",
			},
			wantErr: true,
		},
		{
			name: "missing action",
			perm: Permission{
				SubjectType: SubjectUser,
				SubjectID:   "alice",
				ResourceID:  "docs",
			},
			wantErr: true,
		},
		{
			name: "invalid resource scope",
			perm: Permission{
				SubjectType: SubjectUser,
				SubjectID:   "alice",
				ResourceID:  "/docs",
				Action:      "read",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.perm.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Permission.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
