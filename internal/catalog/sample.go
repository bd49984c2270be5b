package catalog

import "github.com/kingrea/trackplan/internal/talk"

// Sample returns the reference proposal list used for demos and smoke tests.
func Sample() []talk.Talk {
	return []talk.Talk{
		talk.MustNew("Writing Fast Tests Against Enterprise Rails", 60),
		talk.MustNew("Overdoing it in Python", 45),
		talk.MustNew("Lua for the Masses", 30),
		talk.MustNew("Ruby Errors from Mismatched Gem Versions", 45),
		talk.MustNew("Common Ruby Errors", 45),
		talk.MustNew("Rails for Python Developers", talk.LightningMinutes),
		talk.MustNew("Communicating Over Distance", 60),
		talk.MustNew("Accounting-Driven Development", 45),
		talk.MustNew("Woah", 30),
		talk.MustNew("Sit Down and Write", 30),
		talk.MustNew("Pair Programming vs Noise", 45),
		talk.MustNew("Rails Magic", 60),
		talk.MustNew("Ruby on Rails: Why We Should Move On", 60),
		talk.MustNew("Clojure Ate Scala (on my project)", 45),
		talk.MustNew("Programming in the Boondocks of Seattle", 30),
		talk.MustNew("Ruby vs. Clojure for Back-End Development", 30),
		talk.MustNew("Ruby on Rails Legacy App Maintenance", 60),
		talk.MustNew("A World Without HackerNews", 30),
		talk.MustNew("User Interface CSS in Rails Apps", 30),
	}
}
