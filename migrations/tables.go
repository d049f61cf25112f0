package migrations

// createUsersTable creates the users table. Usernames and emails are unique
// regardless of case.
func createUsersTable() Migration {
	return Migration{
		Name:        "create_users_table",
		Description: "Creates the users table",
		TableName:   "users",
		Postgres: []string{
			`CREATE TABLE IF NOT EXISTS users (
				user_id BIGSERIAL PRIMARY KEY,
				username VARCHAR(255) NOT NULL,
				email VARCHAR(255) NOT NULL,
				password_hash VARCHAR(255) NOT NULL,
				salt VARCHAR(255) NOT NULL,
				is_staff BOOLEAN NOT NULL DEFAULT FALSE,
				joined_on TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				joined_from_ip VARCHAR(45),
				profile_fields TEXT NOT NULL DEFAULT '{}',
				avatar_tmp VARCHAR(255) NOT NULL DEFAULT '',
				avatar_src VARCHAR(255) NOT NULL DEFAULT '',
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username ON users (LOWER(username))`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (LOWER(email))`,
			`CREATE INDEX IF NOT EXISTS idx_users_joined_on ON users (joined_on)`,
		},
		// utf8mb4_unicode_ci makes the unique keys case-insensitive.
		MySQL: []string{
			`CREATE TABLE IF NOT EXISTS users (
				user_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				username VARCHAR(255) NOT NULL,
				email VARCHAR(255) NOT NULL,
				password_hash VARCHAR(255) NOT NULL,
				salt VARCHAR(255) NOT NULL,
				is_staff BOOLEAN NOT NULL DEFAULT FALSE,
				joined_on DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
				joined_from_ip VARCHAR(45) NULL,
				profile_fields TEXT NOT NULL,
				avatar_tmp VARCHAR(255) NOT NULL DEFAULT '',
				avatar_src VARCHAR(255) NOT NULL DEFAULT '',
				updated_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
				UNIQUE KEY idx_users_username (username),
				UNIQUE KEY idx_users_email (email),
				KEY idx_users_joined_on (joined_on)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
		},
	}
}

// createBansTable creates the bans table.
func createBansTable() Migration {
	return Migration{
		Name:        "create_bans_table",
		Description: "Creates the bans table",
		TableName:   "bans",
		Postgres: []string{
			`CREATE TABLE IF NOT EXISTS bans (
				ban_id BIGSERIAL PRIMARY KEY,
				check_type SMALLINT NOT NULL,
				banned_value VARCHAR(255) NOT NULL,
				user_message VARCHAR(1000) NOT NULL DEFAULT '',
				staff_message VARCHAR(1000) NOT NULL DEFAULT '',
				expires_on TIMESTAMP,
				is_checked BOOLEAN NOT NULL DEFAULT TRUE,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX IF NOT EXISTS idx_bans_lookup ON bans (check_type, is_checked)`,
			`CREATE INDEX IF NOT EXISTS idx_bans_expires_on ON bans (expires_on)`,
		},
		MySQL: []string{
			`CREATE TABLE IF NOT EXISTS bans (
				ban_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				check_type SMALLINT NOT NULL,
				banned_value VARCHAR(255) NOT NULL,
				user_message VARCHAR(1000) NOT NULL DEFAULT '',
				staff_message VARCHAR(1000) NOT NULL DEFAULT '',
				expires_on DATETIME(6) NULL,
				is_checked BOOLEAN NOT NULL DEFAULT TRUE,
				created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
				KEY idx_bans_lookup (check_type, is_checked),
				KEY idx_bans_expires_on (expires_on)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
		},
	}
}

// createAuditTrailsTable creates the audit_trails table. Rows are removed
// with their user.
func createAuditTrailsTable() Migration {
	return Migration{
		Name:        "create_audit_trails_table",
		Description: "Creates the audit_trails table",
		TableName:   "audit_trails",
		Postgres: []string{
			`CREATE TABLE IF NOT EXISTS audit_trails (
				audit_trail_id BIGSERIAL PRIMARY KEY,
				user_id BIGINT NOT NULL,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				ip_address VARCHAR(45) NOT NULL,
				CONSTRAINT fk_audit_trails_user FOREIGN KEY (user_id) REFERENCES users(user_id) ON DELETE CASCADE
			)`,
			`CREATE INDEX IF NOT EXISTS idx_audit_trails_user_id ON audit_trails (user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_audit_trails_created_at ON audit_trails (created_at)`,
		},
		MySQL: []string{
			`CREATE TABLE IF NOT EXISTS audit_trails (
				audit_trail_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				user_id BIGINT NOT NULL,
				created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
				ip_address VARCHAR(45) NOT NULL,
				KEY idx_audit_trails_user_id (user_id),
				KEY idx_audit_trails_created_at (created_at),
				CONSTRAINT fk_audit_trails_user FOREIGN KEY (user_id) REFERENCES users(user_id) ON DELETE CASCADE
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
		},
	}
}

// createNameChangesTable creates the name_changes table. changed_by_id is
// cleared when the acting user is deleted; changed_by_username is kept.
func createNameChangesTable() Migration {
	return Migration{
		Name:        "create_name_changes_table",
		Description: "Creates the name_changes table",
		TableName:   "name_changes",
		Postgres: []string{
			`CREATE TABLE IF NOT EXISTS name_changes (
				name_change_id BIGSERIAL PRIMARY KEY,
				user_id BIGINT NOT NULL,
				changed_by_id BIGINT,
				changed_by_username VARCHAR(255) NOT NULL,
				changed_on TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				new_username VARCHAR(255) NOT NULL,
				old_username VARCHAR(255) NOT NULL,
				CONSTRAINT fk_name_changes_user FOREIGN KEY (user_id) REFERENCES users(user_id) ON DELETE CASCADE,
				CONSTRAINT fk_name_changes_changed_by FOREIGN KEY (changed_by_id) REFERENCES users(user_id) ON DELETE SET NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_name_changes_user_id ON name_changes (user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_name_changes_changed_by_id ON name_changes (changed_by_id)`,
		},
		MySQL: []string{
			`CREATE TABLE IF NOT EXISTS name_changes (
				name_change_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				user_id BIGINT NOT NULL,
				changed_by_id BIGINT NULL,
				changed_by_username VARCHAR(255) NOT NULL,
				changed_on DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
				new_username VARCHAR(255) NOT NULL,
				old_username VARCHAR(255) NOT NULL,
				KEY idx_name_changes_user_id (user_id),
				KEY idx_name_changes_changed_by_id (changed_by_id),
				CONSTRAINT fk_name_changes_user FOREIGN KEY (user_id) REFERENCES users(user_id) ON DELETE CASCADE,
				CONSTRAINT fk_name_changes_changed_by FOREIGN KEY (changed_by_id) REFERENCES users(user_id) ON DELETE SET NULL
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
		},
	}
}

// createAvatarsTable creates the avatars table
func createAvatarsTable() Migration {
	return Migration{
		Name:        "create_avatars_table",
		Description: "Creates the avatars table",
		TableName:   "avatars",
		Postgres: []string{
			`CREATE TABLE IF NOT EXISTS avatars (
				avatar_id BIGSERIAL PRIMARY KEY,
				user_id BIGINT NOT NULL,
				size INTEGER NOT NULL,
				image VARCHAR(255) NOT NULL,
				CONSTRAINT fk_avatars_user FOREIGN KEY (user_id) REFERENCES users(user_id) ON DELETE CASCADE
			)`,
			`CREATE INDEX IF NOT EXISTS idx_avatars_user_id ON avatars (user_id)`,
		},
		MySQL: []string{
			`CREATE TABLE IF NOT EXISTS avatars (
				avatar_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				user_id BIGINT NOT NULL,
				size INT NOT NULL,
				image VARCHAR(255) NOT NULL,
				KEY idx_avatars_user_id (user_id),
				CONSTRAINT fk_avatars_user FOREIGN KEY (user_id) REFERENCES users(user_id) ON DELETE CASCADE
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
		},
	}
}
