package engagement

const reelsDDL = `CREATE TABLE video_reels (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	video_url TEXT NOT NULL,
	thumbnail_url TEXT,
	tiktok_url TEXT,
	category TEXT NOT NULL,
	likes_count INTEGER NOT NULL DEFAULT 0 CHECK (likes_count >= 0),
	comments_count INTEGER NOT NULL DEFAULT 0 CHECK (comments_count >= 0),
	duration INTEGER NOT NULL DEFAULT 0,
	order_index INTEGER NOT NULL DEFAULT 0,
	is_active BOOLEAN NOT NULL DEFAULT 1,
	is_featured BOOLEAN NOT NULL DEFAULT 0,
	created_at DATETIME,
	updated_at DATETIME
)`

const likesDDL = `CREATE TABLE video_reel_likes (
	id TEXT PRIMARY KEY,
	video_reel_id TEXT NOT NULL REFERENCES video_reels(id) ON DELETE CASCADE,
	session_id TEXT NOT NULL,
	created_at DATETIME,
	CONSTRAINT video_reel_likes_reel_session_key UNIQUE (video_reel_id, session_id)
)`

const commentsDDL = `CREATE TABLE video_reel_comments (
	id TEXT PRIMARY KEY,
	video_reel_id TEXT NOT NULL REFERENCES video_reels(id) ON DELETE CASCADE,
	author_name TEXT NOT NULL,
	content TEXT NOT NULL,
	session_id TEXT NOT NULL,
	created_at DATETIME
)`

var engagementDDL = []string{reelsDDL, likesDDL, commentsDDL}
