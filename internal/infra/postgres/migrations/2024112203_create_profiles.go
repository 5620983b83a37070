package migrations

func init() {
	Migrations.MustRegister(
		execFile("0003_create_profiles.sql"),
		execSQL(`DROP TABLE IF EXISTS profiles`),
	)
}
