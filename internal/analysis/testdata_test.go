package analysis

import "time"

// sampleResume is a plain-text resume with every section the pipeline reads.
const sampleResume = `Jane Doe
jane.doe@example.com | +91 98765 43210

SUMMARY
Final-year student with expert knowledge of Java and Python.

EDUCATION
B.Tech Computer Science, XYZ University, 2020 - 2024, CGPA: 8.7
Higher Secondary, Delhi Public School, 2020, 92%

EXPERIENCE
Software Engineer Intern at Microsoft, May 2023 - July 2023
• Reduced API latency by 40% using Redis caching
• Built React dashboards for the team
Web Development Lead
College Tech Club | Jan 2022 - Present
- Led a team of 6 developers
- Organized hackathons

SKILLS
Java, Python, React, Docker, SQL, Git

PROJECTS
Campus event app built with React and Node.js
`

// collapsedResume mimics PDF text where each page is a single line.
const collapsedResume = "Jane Doe EDUCATION B.Tech ECE, NIT Trichy, 2021 " +
	"EXPERIENCE Software Engineering Intern Tech Solutions Ltd. May 2023 - July 2023 " +
	"• Developed web apps using React • Implemented responsive UI components " +
	"Student Developer College Tech Club Aug 2022 - Present • Leading a team of 5 developers"

// titleCaseResume is collapsed PDF text whose headings are only capitalized.
const titleCaseResume = "Jane Doe Education B.Tech in Computer Science, National Institute of Technology Trichy " +
	"2019 - 2023 CGPA: 8.5 Experience Software Engineer Intern at Google Jun 2022 - Aug 2022 " +
	"• Built REST APIs for campus services • Reduced latency by 30% Skills Java, Python, React, SQL"

var fixedNow = time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }
