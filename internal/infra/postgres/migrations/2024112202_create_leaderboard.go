package migrations

func init() {
	Migrations.MustRegister(
		execFile("0002_create_leaderboard.sql"),
		execSQL(`DROP TABLE IF EXISTS leaderboard`),
	)
}
